package main

// @title           IntentBot API
// @version         1.0
// @description     API do bot de diálogos por intenção: mensagens, streaming por websocket, histórico e callback OAuth
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Token do canal usando o esquema Bearer. Exemplo: "Bearer {token}"
