// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler
// annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new identity",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Resolve an identity",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/taps": {
            "post": {
                "tags": ["taps"],
                "summary": "Record a tap",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/leaderboard": {
            "get": {
                "tags": ["leaderboard"],
                "summary": "Current leaderboard",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/leaderboard/stream": {
            "get": {
                "tags": ["leaderboard"],
                "summary": "Live leaderboard stream",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/sessions/active": {
            "get": {
                "tags": ["leaderboard"],
                "summary": "Active sessions",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/clear": {
            "post": {
                "tags": ["admin"],
                "summary": "Clear all data",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Stairstreak Leaderboard API",
	Description:      "Tap-in/tap-out stair session tracking with a live leaderboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
