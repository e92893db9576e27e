// Package swagger registers the OpenAPI document served under /swagger.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/cache/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cache"],
                "summary": "Package detail cache statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/cache.Stats"}},
                    "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/colis-prive/auth": {
            "post": {
                "description": "Exchanges driver credentials for a carrier session token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["colis-prive"],
                "summary": "Log a driver in at Colis Privé",
                "parameters": [
                    {"description": "Driver credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CredentialsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/colis-prive/details": {
            "post": {
                "description": "Looks up tracking detail for each reference; failures are reported per reference",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["colis-prive"],
                "summary": "Get package details",
                "parameters": [
                    {"description": "Credentials and references", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.DetailsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DetailsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/colis-prive/packages": {
            "post": {
                "description": "Retrieves the parcels assigned to a driver for a date",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["colis-prive"],
                "summary": "Get a driver's tour manifest",
                "parameters": [
                    {"description": "Driver and date", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.PackagesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PackagesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/optimization/optimize": {
            "post": {
                "description": "Orders parcels for a single vehicle using the Mapbox Optimization API",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["optimization"],
                "summary": "Optimize a delivery route",
                "parameters": [
                    {"description": "Parcels and optional depot", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.OptimizeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/tournees/optimize": {
            "post": {
                "description": "Authenticates at Colis Privé, retrieves the tour, enriches each parcel and orders the stops",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournees"],
                "summary": "Optimize a driver's tour",
                "parameters": [
                    {"description": "Driver, date and options", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.TourRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.FailureResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.FailureResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.FailureResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/handler.FailureResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Reports the service status and the status of its dependencies.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/server.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "cache.Stats": {
            "type": "object",
            "properties": {
                "backend": {"type": "string"},
                "entries": {"type": "integer"},
                "hits": {"type": "integer"},
                "misses": {"type": "integer"},
                "evictions": {"type": "integer"},
                "expired": {"type": "integer"}
            }
        },
        "domain.OptimizedStop": {
            "type": "object",
            "properties": {
                "reference": {"type": "string"},
                "service": {"type": "string"},
                "eta": {"type": "string"},
                "order": {"type": "integer"}
            }
        },
        "domain.Point": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            }
        },
        "domain.Result": {
            "type": "object",
            "properties": {
                "stops": {"type": "array", "items": {"$ref": "#/definitions/domain.OptimizedStop"}},
                "unrouted": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "matricule": {"type": "string"},
                "issued_at": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "handler.CredentialsRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "example": "A187518"},
                "password": {"type": "string", "example": "secret"},
                "societe": {"type": "string", "example": "PCP0010699"}
            }
        },
        "handler.DetailsRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "societe": {"type": "string"},
                "references": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.DetailsResponse": {
            "type": "object",
            "properties": {
                "succeeded": {"type": "integer"},
                "failed": {"type": "integer"},
                "results": {"type": "object"}
            }
        },
        "handler.FailureResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "code": {"type": "string"},
                "ray_id": {"type": "string"},
                "stage": {"type": "string"},
                "result": {"type": "object"}
            }
        },
        "handler.OptimizeRequest": {
            "type": "object",
            "properties": {
                "packages": {"type": "array", "items": {"$ref": "#/definitions/handler.PackageInput"}},
                "depot": {"$ref": "#/definitions/domain.Point"}
            }
        },
        "handler.PackageInput": {
            "type": "object",
            "properties": {
                "reference": {"type": "string", "example": "10677000012345"},
                "latitude": {"type": "number", "example": 48.8566},
                "longitude": {"type": "number", "example": 2.3522}
            }
        },
        "handler.PackagesRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "societe": {"type": "string"},
                "matricule": {"type": "string", "example": "A187518"},
                "date": {"type": "string", "example": "2025-09-11"}
            }
        },
        "handler.PackagesResponse": {
            "type": "object",
            "properties": {
                "matricule": {"type": "string"},
                "date": {"type": "string"},
                "count": {"type": "integer"},
                "packages": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handler.TourRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "example": "A187518"},
                "password": {"type": "string", "example": "secret"},
                "societe": {"type": "string", "example": "PCP0010699"},
                "matricule": {"type": "string", "example": "A187518"},
                "date": {"type": "string", "example": "2025-09-11"},
                "depot": {"$ref": "#/definitions/domain.Point"},
                "with_details": {"type": "boolean"}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "invalid credentials"},
                "code": {"type": "string", "example": "invalid_credentials"},
                "ray_id": {"type": "string", "example": "5f0c6f0e-3c1a-4b59-9e3c-1d2f3a4b5c6d"}
            }
        },
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "environment": {"type": "string", "example": "production"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Fleet Route API",
	Description:      "Colis Privé tour retrieval and Mapbox route optimization.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
