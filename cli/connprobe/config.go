package main

import (
	"encoding/json"
	"os"
	"time"

	E "github.com/sagernet/sing-conn/common/exceptions"
)

const defaultTimeout = 10 * time.Second

// loadConfig fills flags left unset on the command line from the
// configuration file.
func loadConfig(f *flags) error {
	if f.ConfigFile != "" {
		content, err := os.ReadFile(f.ConfigFile)
		if err != nil {
			return E.Cause(err, "read config file")
		}
		flagsNew := new(flags)
		err = json.Unmarshal(content, flagsNew)
		if err != nil {
			return E.Cause(err, "decode config file")
		}
		if flagsNew.Listen != "" && f.Listen == "" {
			f.Listen = flagsNew.Listen
		}
		if flagsNew.Server != "" && f.Server == "" {
			f.Server = flagsNew.Server
		}
		if flagsNew.Message != "" && f.Message == "" {
			f.Message = flagsNew.Message
		}
		if flagsNew.ServerName != "" && f.ServerName == "" {
			f.ServerName = flagsNew.ServerName
		}
		if flagsNew.Fingerprint != "" && f.Fingerprint == "" {
			f.Fingerprint = flagsNew.Fingerprint
		}
		if flagsNew.Interface != "" && f.Interface == "" {
			f.Interface = flagsNew.Interface
		}
		if flagsNew.FWMark != 0 && f.FWMark == 0 {
			f.FWMark = flagsNew.FWMark
		}
		if flagsNew.TimeoutStr != "" && f.Timeout == 0 {
			f.Timeout, err = time.ParseDuration(flagsNew.TimeoutStr)
			if err != nil {
				return E.Cause(err, "parse timeout")
			}
		}
		if flagsNew.TLS {
			f.TLS = true
		}
		if flagsNew.Insecure {
			f.Insecure = true
		}
		if flagsNew.Verbose {
			f.Verbose = true
		}
	}
	if f.Timeout == 0 {
		f.Timeout = defaultTimeout
	}
	return nil
}
