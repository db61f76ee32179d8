package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR" default:"localhost:6379"`
	JWTSecret   string `env:"JWT_SECRET" default:"local_dev_secret"`
	AdminSecret string `env:"ADMIN_SECRET" default:"admin-secret-dev"`
	Env         string `env:"APP_ENV" default:"dev"`
}
