// Package docs registers the Swagger specification served at /docs.
// Regenerate with `swag init -g cmd/rembgd/main.go` after changing
// handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "rembgd maintainers"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/remove-background": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["image/png"],
                "tags": ["background-removal"],
                "summary": "Remove background from an image",
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true, "description": "Image file (jpg, jpeg, png, bmp, tiff, webp)"},
                    {"type": "string", "name": "output_format", "in": "formData", "default": "PNG", "description": "PNG or WEBP"},
                    {"type": "integer", "name": "quality", "in": "formData", "default": 95, "description": "WEBP quality 1-100"}
                ],
                "responses": {
                    "200": {"description": "Processed image stream"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "413": {"description": "Payload Too Large", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/remove-background-base64": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["background-removal"],
                "summary": "Remove background, base64 JSON envelope",
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true, "description": "Image file (jpg, jpeg, png, bmp, tiff, webp)"},
                    {"type": "string", "name": "output_format", "in": "formData", "default": "PNG", "description": "PNG or WEBP"},
                    {"type": "integer", "name": "quality", "in": "formData", "default": 95, "description": "WEBP quality 1-100"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.RemoveBackgroundResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Pipeline status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "unsupported file format"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "All services are operational - Ready to process images"},
                "status": {"type": "string", "example": "healthy"},
                "version": {"type": "string", "example": "1.0.1"}
            }
        },
        "types.RemoveBackgroundResponse": {
            "type": "object",
            "properties": {
                "base64_image": {"type": "string"},
                "compression_ratio": {"type": "number", "example": 72.91},
                "message": {"type": "string", "example": "Background removed successfully from photo.jpg"},
                "original_size": {"type": "integer", "example": 482133},
                "output_format": {"type": "string", "example": "png"},
                "output_size": {"type": "integer", "example": 130587},
                "processing_time": {"type": "number", "example": 1.42},
                "success": {"type": "boolean", "example": true}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "failed_total": {"type": "integer", "example": 3},
                "inflight": {"type": "integer", "example": 1},
                "last_error": {"type": "string"},
                "max_queue_depth": {"type": "integer", "example": 32},
                "model": {"type": "string", "example": "u2net"},
                "processed_total": {"type": "integer", "example": 1042},
                "queue_len": {"type": "integer", "example": 2},
                "server_time_unix": {"type": "integer", "example": 1700000000},
                "state": {"type": "string", "example": "ready"},
                "uptime_seconds": {"type": "integer", "example": 3600},
                "workers": {"type": "integer", "example": 4}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "rembgd API",
	Description:      "HTTP API for AI-powered image background removal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
