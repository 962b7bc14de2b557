package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"widt/internal/structures"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("bot.token", "WIDT_BOT_TOKEN")
	viper.BindEnv("bot.outboundUrl", "WIDT_OUTBOUND_URL")
	viper.BindEnv("email.domain", "WIDT_MG_DOMAIN")
	viper.BindEnv("email.apiKey", "WIDT_MG_KEY")
	viper.BindEnv("logger.level", "WIDT_LOG_LEVEL")
	viper.BindEnv("scheduler.interval", "WIDT_SWEEP_INTERVAL")
	viper.BindEnv("store.path", "WIDT_STORE_PATH")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "WhatIDidToday"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode
	conf.DebugChat = flags.DebugChat

	// The debug allow-list also shortens the sweep for faster iteration.
	if conf.DebugChat != "" {
		conf.Scheduler.Interval = 5 * time.Minute
	}

	return &conf, nil
}
