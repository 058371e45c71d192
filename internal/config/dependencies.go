package config

import (
	"taskly/configs"
	"taskly/internal/forms"
	"taskly/internal/repository"
	"taskly/internal/websocket"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
)

var (
	// Global dependency yang akan digunakan di seluruh aplikasi
	Settings    = configs.Default()
	DB          *sqlx.DB
	Users       repository.UserRepository
	Tasks       repository.TaskRepository
	Validate    *validator.Validate = forms.NewValidator()
	RedisClient *redis.Client
	Hub         *websocket.Hub
)
