package main

import (
	"time"

	conn "github.com/sagernet/sing-conn"
	"github.com/sagernet/sing-conn/common/log"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type flags struct {
	Listen      string        `json:"listen"`
	Server      string        `json:"server"`
	Message     string        `json:"message"`
	TLS         bool          `json:"tls"`
	ServerName  string        `json:"server_name"`
	Insecure    bool          `json:"insecure"`
	Fingerprint string        `json:"fingerprint"`
	Interface   string        `json:"interface"`
	FWMark      int           `json:"fwmark"`
	Timeout     time.Duration `json:"-"`
	TimeoutStr  string        `json:"timeout"`
	Verbose     bool          `json:"verbose"`
	ConfigFile  string        `json:"-"`
}

func main() {
	f := new(flags)

	command := &cobra.Command{
		Use:     "connprobe",
		Short:   "exercise connection bindings over the network",
		Version: conn.VersionStr,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			err := loadConfig(f)
			if err != nil {
				return err
			}
			log.SetVerbose(f.Verbose)
			return nil
		},
	}
	command.PersistentFlags().StringVarP(&f.ConfigFile, "config", "c", "", "Use a configuration file.")
	command.PersistentFlags().BoolVarP(&f.Verbose, "verbose", "v", false, "Enable verbose mode.")

	echoCommand := &cobra.Command{
		Use:   "echo",
		Short: "run a tcp echo server",
		Run: func(cmd *cobra.Command, args []string) {
			err := runEcho(cmd.Context(), f)
			if err != nil {
				logrus.Fatal(err)
			}
		},
	}
	echoCommand.Flags().StringVarP(&f.Listen, "listen", "l", "", "Set the listen address.")
	command.AddCommand(echoCommand)

	sendCommand := &cobra.Command{
		Use:   "send",
		Short: "send a message and wait for the echo",
		Run: func(cmd *cobra.Command, args []string) {
			err := runSend(cmd.Context(), f)
			if err != nil {
				logrus.Fatal(err)
			}
		},
	}
	sendCommand.Flags().StringVarP(&f.Server, "server", "s", "", "Set the server address.")
	sendCommand.Flags().StringVarP(&f.Message, "message", "m", "", "Set the message to send.")
	sendCommand.Flags().BoolVar(&f.TLS, "tls", false, "Wrap the connection in TLS.")
	sendCommand.Flags().StringVarP(&f.ServerName, "sni", "n", "", "Set the TLS server name.")
	sendCommand.Flags().BoolVarP(&f.Insecure, "insecure", "i", false, "Skip TLS certificate verification.")
	sendCommand.Flags().StringVar(&f.Fingerprint, "fingerprint", "", "Set the TLS client fingerprint. [possible values: chrome, firefox, ios, randomized, golang]")
	sendCommand.Flags().StringVar(&f.Interface, "interface", "", "Bind outbound connections to the network interface.")
	sendCommand.Flags().IntVar(&f.FWMark, "fwmark", 0, "Set outbound socket mark.")
	sendCommand.Flags().DurationVarP(&f.Timeout, "timeout", "t", 0, "Set the exchange timeout.")
	command.AddCommand(sendCommand)

	err := command.Execute()
	if err != nil {
		logrus.Fatal(err)
	}
}
