// cmd/seisdisagg/main.go
package main

import (
	"seisdisagg/internal/app"
	"seisdisagg/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
