// Package docs provides the generated swagger spec served at /swagger/doc.json.
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
        "/market/items": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Fetch unsold market items",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "List a collectible for sale",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/market/items/{item_id}/purchase": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Purchase a market item",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/collectibles/{collectible_id}/metadata": {
            "get": {
                "produces": ["application/json"],
                "tags": ["registry"],
                "summary": "Resolve collectible metadata",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/pricing/table": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pricing"],
                "summary": "Read the tier price table",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Scorpion Marketplace API",
	Description:      "Collectible registry, tier pricing and market trading endpoints.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
