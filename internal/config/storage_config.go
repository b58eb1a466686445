package config

// Storage kinds.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

type StorageConfig interface {
	GetStorageKind() string
	GetStoragePath() string
	GetStoragePassphrase() string
	GetStoragePrefix() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

// Storage selects where the session is persisted between runs.
type Storage struct {
	Kind       string `yaml:"kind" env:"STORAGE_KIND" env-default:"file"`
	Path       string `yaml:"path" env:"STORAGE_PATH" env-default:".resumectl/session.json"`
	Passphrase string `yaml:"passphrase" env:"STORAGE_PASSPHRASE"`
	Prefix     string `yaml:"prefix" env:"STORAGE_PREFIX" env-default:"smart_resume_"`

	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
}

var _ StorageConfig = Storage{}

func (s Storage) GetStorageKind() string {
	return s.Kind
}

func (s Storage) GetStoragePath() string {
	return s.Path
}

func (s Storage) GetStoragePassphrase() string {
	return s.Passphrase
}

func (s Storage) GetStoragePrefix() string {
	return s.Prefix
}

func (s Storage) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Storage) GetRedisPassword() string {
	return s.RedisPassword
}

func (s Storage) GetRedisDB() int {
	return s.RedisDB
}
