// Package docs holds the OpenAPI description served by the Swagger UI.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Check if the API is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/user/signup": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Create an account",
                "parameters": [
                    {"type": "string", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "name": "password", "in": "formData", "required": true},
                    {"type": "string", "name": "phone", "in": "formData"},
                    {"type": "file", "name": "avatar", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/user.SignupResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}}
                }
            }
        },
        "/user/login": {
            "post": {
                "consumes": ["multipart/form-data", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Log in with email and password",
                "parameters": [
                    {"type": "string", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/user.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/user/update/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Modify an account",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "email", "in": "formData"},
                    {"type": "string", "name": "username", "in": "formData"},
                    {"type": "string", "name": "phone", "in": "formData"},
                    {"type": "file", "name": "avatar", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/user/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Delete an account",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/offer/publish": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["offer"],
                "summary": "Publish an offer",
                "parameters": [
                    {"type": "string", "name": "title", "in": "formData"},
                    {"type": "string", "name": "description", "in": "formData"},
                    {"type": "number", "name": "price", "in": "formData"},
                    {"type": "string", "name": "brand", "in": "formData"},
                    {"type": "string", "name": "size", "in": "formData"},
                    {"type": "string", "name": "condition", "in": "formData"},
                    {"type": "string", "name": "color", "in": "formData"},
                    {"type": "string", "name": "city", "in": "formData"},
                    {"type": "file", "name": "picture", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/offer.Offer"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}}
                }
            }
        },
        "/offer/update/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["offer"],
                "summary": "Modify an offer",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "title", "in": "formData"},
                    {"type": "string", "name": "description", "in": "formData"},
                    {"type": "number", "name": "price", "in": "formData"},
                    {"type": "string", "name": "brand", "in": "formData"},
                    {"type": "string", "name": "size", "in": "formData"},
                    {"type": "string", "name": "condition", "in": "formData"},
                    {"type": "string", "name": "color", "in": "formData"},
                    {"type": "string", "name": "city", "in": "formData"},
                    {"type": "file", "name": "picture", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}}
                }
            }
        },
        "/offer/delete/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["offer"],
                "summary": "Delete an offer and its pictures",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}}
                }
            }
        },
        "/offer/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["offer"],
                "summary": "Get an offer with its owner",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/offer.Offer"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}}
                }
            }
        },
        "/offers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["offer"],
                "summary": "Search offers",
                "parameters": [
                    {"type": "string", "name": "title", "in": "query"},
                    {"type": "number", "name": "priceMin", "in": "query"},
                    {"type": "number", "name": "priceMax", "in": "query"},
                    {"type": "string", "enum": ["price-asc", "price-desc"], "name": "sort", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/offer.SearchResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "httputil.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "httputil.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "imagestore.ImageRef": {
            "type": "object",
            "properties": {
                "public_id": {"type": "string"},
                "folder": {"type": "string"},
                "url": {"type": "string"},
                "secure_url": {"type": "string"},
                "format": {"type": "string"},
                "resource_type": {"type": "string"},
                "bytes": {"type": "integer"},
                "etag": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "user.Account": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "phone": {"type": "string"},
                "avatar": {"$ref": "#/definitions/imagestore.ImageRef"}
            }
        },
        "user.SignupResponse": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "token": {"type": "string"},
                "account": {
                    "type": "object",
                    "properties": {
                        "username": {"type": "string"},
                        "phone": {"type": "string"},
                        "email": {"type": "string"},
                        "avatar_url": {"type": "string"}
                    }
                }
            }
        },
        "user.LoginResponse": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "token": {"type": "string"},
                "account": {"$ref": "#/definitions/user.Account"}
            }
        },
        "offer.Owner": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "account": {"$ref": "#/definitions/user.Account"}
            }
        },
        "offer.Offer": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "product_name": {"type": "string"},
                "product_description": {"type": "string"},
                "product_price": {"type": "number"},
                "product_details": {"type": "array", "items": {"type": "object", "additionalProperties": {"type": "string"}}},
                "product_image": {"$ref": "#/definitions/imagestore.ImageRef"},
                "owner": {"$ref": "#/definitions/offer.Owner"}
            }
        },
        "offer.SearchResult": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "offers": {"type": "array", "items": {"$ref": "#/definitions/offer.Offer"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the account token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Marketplace API",
	Description:      "Second-hand marketplace backend: accounts, offers and their pictures.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
