package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/spim-dispatch/internal/storage"
)

// Default configuration values.
const (
	defaultDiscoveryPrefix  = "fused/"
	defaultDiscoveryPattern = `Ex_\d{3}_Em_\d{3}`
	defaultMarker           = "COPY_COMPLETE"
	defaultMaxAttempts      = 3
	defaultInitialDelayMs   = 1000
	defaultMaxDelayMs       = 30000
	defaultSubmitTimeoutSec = 30
	defaultResultsDir       = "../results"
	defaultDataDir          = "../data"
)

// Ошибки конфигурации.
var (
	// ErrMissingDatasetRoot — не задан корень датасета в хранилище.
	ErrMissingDatasetRoot = errors.New("dataset_root is required")

	// ErrMissingLaunchURL — не задан адрес сервиса запуска.
	ErrMissingLaunchURL = errors.New("launch.base_url is required")
)

// Pipeline — параметры целевого downstream-пайплайна.
type Pipeline struct {
	// CapsuleID — идентификатор капсулы, которую запускаем на каждый канал.
	CapsuleID string `yaml:"capsule_id"`

	// Parameters — общие параметры, передаваемые каждому запуску.
	Parameters map[string]string `yaml:"parameters"`

	// DataAssets — входные data assets, монтируемые в каждый запуск.
	DataAssets []DataAsset `yaml:"data_assets"`

	// InputPathTemplate — шаблон пути к входным данным канала внутри
	// капсулы. Плейсхолдер {channel} заменяется именем канала.
	InputPathTemplate string `yaml:"input_path_template"`

	// OutputPrefixTemplate — шаблон префикса результатов запуска
	// в хранилище. Плейсхолдеры: {dataset}, {channel}.
	OutputPrefixTemplate string `yaml:"output_prefix_template"`

	// BackgroundChannel — фоновый (регистрационный) канал.
	// Если пуст, используется первый обнаруженный канал.
	BackgroundChannel string `yaml:"background_channel"`
}

// DataAsset — привязка data asset в конфигурации.
type DataAsset struct {
	ID    string `yaml:"id"`
	Mount string `yaml:"mount"`
}

// Discovery — правило обнаружения каналов.
// Правило задаётся конфигурацией, а не кодом: раскладка результатов
// upstream-этапа может меняться между версиями пайплайна.
type Discovery struct {
	// Prefix — под-префикс корня датасета, в котором ищем каналы.
	Prefix string `yaml:"prefix"`

	// Pattern — регулярное выражение; первое совпадение в ключе
	// даёт имя канала.
	Pattern string `yaml:"pattern"`
}

// Retry — политика повторов при transient-ошибках отправки.
type Retry struct {
	// MaxAttempts — максимум попыток отправки (включая первую).
	MaxAttempts int `yaml:"max_attempts"`

	// InitialDelayMs — начальная задержка перед повтором.
	InitialDelayMs int `yaml:"initial_delay_ms"`

	// MaxDelayMs — потолок задержки при exponential backoff.
	MaxDelayMs int `yaml:"max_delay_ms"`
}

// InitialDelay возвращает начальную задержку как time.Duration.
func (r Retry) InitialDelay() time.Duration {
	return time.Duration(r.InitialDelayMs) * time.Millisecond
}

// MaxDelay возвращает потолок задержки как time.Duration.
func (r Retry) MaxDelay() time.Duration {
	return time.Duration(r.MaxDelayMs) * time.Millisecond
}

// Cleanup — параметры clean-режима.
type Cleanup struct {
	// Marker — имя copy-complete маркера. Удаление target разрешено
	// только если объект <output_prefix>/<marker> существует.
	Marker string `yaml:"marker"`
}

// Launch — подключение к сервису запуска вычислений.
type Launch struct {
	// BaseURL — адрес API сервиса запуска.
	BaseURL string `yaml:"base_url"`

	// Token — API-токен. Переопределяется LAUNCH_API_TOKEN.
	Token string `yaml:"token"`

	// TimeoutSec — таймаут одного submit-вызова.
	// Превышение трактуется как transient-ошибка.
	TimeoutSec int `yaml:"timeout_sec"`
}

// Timeout возвращает таймаут submit-вызова как time.Duration.
func (l Launch) Timeout() time.Duration {
	return time.Duration(l.TimeoutSec) * time.Second
}

// Viz — параметры генерации neuroglancer-состояния.
type Viz struct {
	// BaseURL — базовый URL neuroglancer-инстанса.
	BaseURL string `yaml:"base_url"`

	// ResolutionXYZ — размер вокселя по осям x, y, z в микронах.
	ResolutionXYZ [3]float64 `yaml:"resolution_xyz"`
}

// Config — полная конфигурация одного вызова этапа.
type Config struct {
	// PipelineVersion — версия пайплайна, записывается в run record.
	PipelineVersion string `yaml:"pipeline_version"`

	// Dataset — имя датасета. Если пусто, берётся из
	// data_description.json в data-папке (при наличии).
	Dataset string `yaml:"dataset"`

	// DataDir — локальная папка входных данных этапа.
	// Здесь ищутся метаданные датасета.
	DataDir string `yaml:"data_dir"`

	// DatasetRoot — префикс датасета в объектном хранилище.
	DatasetRoot string `yaml:"dataset_root"`

	// ResultsDir — локальная папка результатов этапа.
	// Здесь живут run record и neuroglancer-состояние.
	ResultsDir string `yaml:"results_dir"`

	Pipeline  Pipeline       `yaml:"pipeline"`
	Discovery Discovery      `yaml:"discovery"`
	Retry     Retry          `yaml:"retry"`
	Cleanup   Cleanup        `yaml:"cleanup"`
	Storage   storage.Config `yaml:"-"`
	Launch    Launch         `yaml:"launch"`
	Viz       Viz            `yaml:"viz"`

	// StorageYAML — storage-секция YAML; credentials приходят из env.
	StorageYAML StorageFile `yaml:"storage"`
}

// StorageFile — storage-секция YAML-файла (без credentials).
type StorageFile struct {
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Bucket   string `yaml:"bucket"`
	UseSSL   *bool  `yaml:"use_ssl"`
}

// Load читает YAML-файл, применяет значения по умолчанию и
// переопределения из окружения.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults заполняет незаданные поля значениями по умолчанию.
func (c *Config) applyDefaults() error {
	if c.ResultsDir == "" {
		c.ResultsDir = defaultResultsDir
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.Discovery.Prefix == "" {
		c.Discovery.Prefix = defaultDiscoveryPrefix
	}
	if c.Discovery.Pattern == "" {
		c.Discovery.Pattern = defaultDiscoveryPattern
	}
	if c.Cleanup.Marker == "" {
		c.Cleanup.Marker = defaultMarker
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = defaultMaxAttempts
	}
	if c.Retry.InitialDelayMs <= 0 {
		c.Retry.InitialDelayMs = defaultInitialDelayMs
	}
	if c.Retry.MaxDelayMs <= 0 {
		c.Retry.MaxDelayMs = defaultMaxDelayMs
	}
	if c.Launch.TimeoutSec <= 0 {
		c.Launch.TimeoutSec = defaultSubmitTimeoutSec
	}
	return nil
}

// applyEnv переносит credentials и адреса интеграций из окружения.
func (c *Config) applyEnv() error {
	useSSL := true
	if c.StorageYAML.UseSSL != nil {
		useSSL = *c.StorageYAML.UseSSL
	}
	useSSL, err := envBool("STORAGE_USE_SSL", useSSL)
	if err != nil {
		return err
	}

	c.Storage = storage.Config{
		Endpoint:  envString("STORAGE_ENDPOINT", c.StorageYAML.Endpoint),
		AccessKey: envString("STORAGE_ACCESS_KEY", ""),
		SecretKey: envString("STORAGE_SECRET_KEY", ""),
		Region:    envString("STORAGE_REGION", c.StorageYAML.Region),
		Bucket:    envString("STORAGE_BUCKET", c.StorageYAML.Bucket),
		UseSSL:    useSSL,
	}

	c.Launch.BaseURL = envString("LAUNCH_API_URL", c.Launch.BaseURL)
	c.Launch.Token = envString("LAUNCH_API_TOKEN", c.Launch.Token)

	timeoutSec, err := envInt("LAUNCH_TIMEOUT_SEC", c.Launch.TimeoutSec)
	if err != nil {
		return err
	}
	c.Launch.TimeoutSec = timeoutSec

	return nil
}

// Validate проверяет обязательные поля.
// Поля, нужные только одному режиму, проверяются оркестраторами.
func (c *Config) Validate() error {
	if c.DatasetRoot == "" {
		return ErrMissingDatasetRoot
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return nil
}
