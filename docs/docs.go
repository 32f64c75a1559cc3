// Package docs registra a documentação swagger da API do bot (gerada a partir das anotações
// dos controllers com swag init -g cmd/api/docs.go).
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
        "/bot/messages": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Processa uma mensagem ou evento do canal e retorna as mensagens do bot no turno",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bot"],
                "summary": "Envia uma atividade ao bot",
                "parameters": [
                    {"description": "Atividade", "name": "activity", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ActivityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ActivityResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/bot/conversations/{conversation_id}/history": {
            "get": {
                "security": [{"Bearer": []}],
                "description": "Retorna as mensagens da conversa, das mais recentes para as mais antigas",
                "produces": ["application/json"],
                "tags": ["bot"],
                "summary": "Histórico da conversa",
                "parameters": [
                    {"type": "string", "description": "ID da conversa", "name": "conversation_id", "in": "path", "required": true},
                    {"type": "integer", "default": 1, "description": "Página", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Itens por página", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HistoryResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["bot"],
                "summary": "Apaga o histórico da conversa",
                "parameters": [
                    {"type": "string", "description": "ID da conversa", "name": "conversation_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/bot/stream": {
            "get": {
                "security": [{"Bearer": []}],
                "description": "Abre um websocket; o cliente envia dto.ActivityRequest e recebe dto.StreamFrame",
                "tags": ["bot"],
                "summary": "Websocket da conversa",
                "parameters": [
                    {"type": "string", "description": "ID da conversa", "name": "conversation_id", "in": "query", "required": true},
                    {"type": "string", "description": "Token do canal (alternativa ao cabeçalho Authorization)", "name": "access_token", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/oauth/callback": {
            "get": {
                "description": "Troca o code pelo token, entrega o token às conversas abertas do usuário e retorna o código mágico",
                "produces": ["application/json"],
                "tags": ["oauth"],
                "summary": "Callback OAuth",
                "parameters": [
                    {"type": "string", "description": "State emitido no link de login", "name": "state", "in": "query", "required": true},
                    {"type": "string", "description": "Authorization code", "name": "code", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"allOf": [{"$ref": "#/definitions/dto.SuccessResponse"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/dto.SignInResponse"}}}]}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ActivityRequest": {
            "type": "object",
            "required": ["conversation_id"],
            "properties": {
                "conversation_id": {"type": "string", "example": "c-42"},
                "name": {"type": "string", "example": ""},
                "text": {"type": "string", "example": "sum"},
                "type": {"type": "string", "example": "message"},
                "value": {"type": "string"}
            }
        },
        "dto.ActivityResponse": {
            "type": "object",
            "properties": {
                "conversation_id": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/turn.Message"}}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "details": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.HistoryResponse": {
            "type": "object",
            "properties": {
                "messages": {"type": "array", "items": {"$ref": "#/definitions/chat.Message"}},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "dto.SignInResponse": {
            "type": "object",
            "properties": {
                "delivered": {"type": "integer"},
                "magic_code": {"type": "string"}
            }
        },
        "dto.SuccessResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "chat.Message": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "conversation_id": {"type": "string"},
                "id": {"type": "string"},
                "role": {"type": "string"},
                "timestamp": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "turn.Message": {
            "type": "object",
            "properties": {
                "sign_in_card": {"$ref": "#/definitions/turn.SignInCard"},
                "text": {"type": "string"}
            }
        },
        "turn.SignInCard": {
            "type": "object",
            "properties": {
                "link": {"type": "string"},
                "text": {"type": "string"},
                "title": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Token do canal usando o esquema Bearer. Exemplo: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo contém as informações exportadas da especificação Swagger
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "IntentBot API",
	Description:      "API do bot de diálogos orientado a intenções",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
