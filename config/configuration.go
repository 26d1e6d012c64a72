package config

import (
	"github.com/spf13/viper"
)

type EngineConfiguration struct {
	Root        string `json:"root" mapstructure:"root" default:""`
	DBPath      string `json:"db_path" mapstructure:"db_path" default:"/tmp/deltamaint"`
	TmpPath     string `json:"tmp_path" mapstructure:"tmp_path" default:""`
	ScanWorkers int    `json:"scan_workers" mapstructure:"scan_workers" default:"10"`
}

type S3Configuration struct {
	URL    string `json:"url" mapstructure:"url" default:""`
	Key    string `json:"key" mapstructure:"key" default:""`
	Secret string `json:"secret" mapstructure:"secret" default:""`
	Bucket string `json:"bucket" mapstructure:"bucket" default:""`
	Region string `json:"region" mapstructure:"region" default:""`
	Secure bool   `json:"secure" mapstructure:"secure" default:"true"`
}

type Configuration struct {
	Engine EngineConfiguration `json:"engine" mapstructure:"engine" default:""`
	S3     S3Configuration     `json:"s3" mapstructure:"s3" default:""`
}

var Config = &Configuration{
	Engine: EngineConfiguration{DBPath: "/tmp/deltamaint", ScanWorkers: 10},
	S3:     S3Configuration{Secure: true},
}

func InitConfig(file string) error {
	viper.SetConfigFile(file)
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	c := &Configuration{}
	if err := viper.Unmarshal(c); err != nil {
		return err
	}
	if c.Engine.DBPath == "" {
		c.Engine.DBPath = "/tmp/deltamaint"
	}
	if c.Engine.ScanWorkers <= 0 {
		c.Engine.ScanWorkers = 10
	}
	Config = c
	return nil
}
