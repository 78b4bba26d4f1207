// filepath: cmd/shapehub/main.go
package main

import (
	"shapehub/internal/cli"
)

// @title ShapeHub-API
// @version 1.0.0
// @description Local backend for the presentation shape-library extension.
// @BasePath /api
// @schemes http

func main() {
	// Delegate all execution to the CLI package
	cli.Execute()
}
