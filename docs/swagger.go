// Package docs provides Swagger documentation for the API.
package docs

// @title Roda Campaign Services API
// @version 1.0
// @description Field evidence backend for outdoor vehicle-advertising campaigns

// @contact.name API Support
// @contact.email suporte@rodamidia.com.br

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
