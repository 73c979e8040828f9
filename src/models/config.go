package models

// MConfig Structure
type MConfig struct {
	Name       string         `yaml:"name"`
	Host       string         `yaml:"host"`
	Port       int            `yaml:"port"`
	LogLevel   string         `yaml:"log_level"`
	GrpcHost   string         `yaml:"grpc_host"`
	GrpcPort   int            `yaml:"grpc_port"`
	Storage    MStorageConfig `yaml:"storage"`
	Feed       MFeedConfig    `yaml:"feed"`
	WindowsAgg []int          `yaml:"windows_aggregation"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MFeedConfig struct {
	URL               string `yaml:"url"`
	AppID             int    `yaml:"app_id"`
	Symbol            string `yaml:"symbol"`
	TickCount         int    `yaml:"tick_count"`
	KeepaliveSeconds  int    `yaml:"keepalive_seconds"`
	RefreshSeconds    int    `yaml:"refresh_seconds"`
	DataRetentionDays int    `yaml:"data_retention_days"`
}
