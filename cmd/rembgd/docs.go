package main

// General API documentation for swaggo. Run `swag init -g cmd/rembgd/main.go`
// to regenerate the docs package.
//
// @title           rembgd API
// @version         1.0.1
// @description     HTTP API for AI-powered image background removal.
//
// @contact.name   rembgd maintainers
//
// @BasePath  /
//
// @schemes http
