package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/ircling/ircling/pkg/client"
	"github.com/ircling/ircling/pkg/client/ui"
)

func main() {
	server := pflag.String("server", "", "Server address (host, host:port or ws://host:port)")
	port := pflag.Int("port", 0, "Server port (ignored when --server carries one)")
	nick := pflag.String("nick", "", "Nickname")
	realName := pflag.String("realname", "", "Display name sent during registration")
	channel := pflag.String("channel", "", "Channel to join once registered")
	configPath := pflag.String("config", "", "Path to config file (default: XDG config dir)")
	debugLog := pflag.String("debug-log", "", "Write wire and lifecycle debug output to this file")
	pflag.Parse()

	if *configPath == "" {
		*configPath = client.DefaultConfigPath()
	}

	config, err := client.LoadClientConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the config file.
	if *server != "" {
		config.Connection.Server = *server
	}
	if *port != 0 {
		config.Connection.Port = *port
	}
	if *nick != "" {
		config.Identity.Nick = *nick
	}
	if *realName != "" {
		config.Identity.RealName = *realName
	}

	addr := config.GetServerAddress()
	if addr == "" {
		log.Fatal("No server address; pass --server or set connection.server in the config")
	}
	if config.Connection.Port < 1 || config.Connection.Port > 65535 {
		log.Fatalf("Invalid port: %d", config.Connection.Port)
	}

	statePath, err := config.GetStateDBPath()
	if err != nil {
		log.Fatalf("Failed to resolve state path: %v", err)
	}
	state, err := client.OpenState(statePath)
	if err != nil {
		log.Fatalf("Failed to open state database: %v", err)
	}
	defer state.Close()

	handle := strings.TrimSpace(config.Identity.Nick)
	if handle == "" {
		handle, _ = state.LastNickFor(addr)
	}
	if handle == "" {
		handle = state.GetLastNickname()
	}
	if handle == "" {
		log.Fatal("No nickname; pass --nick or set identity.nick in the config")
	}
	realNameValue := strings.TrimSpace(config.Identity.RealName)
	if realNameValue == "" {
		realNameValue = handle
	}

	c, err := client.NewClient(client.Options{
		Addr:              addr,
		Handle:            handle,
		RealName:          realNameValue,
		Channel:           *channel,
		AutoReconnect:     config.Connection.AutoReconnect,
		ReconnectDelay:    time.Duration(config.Connection.ReconnectDelaySeconds) * time.Second,
		KeepaliveInterval: time.Duration(config.Connection.KeepaliveIntervalSeconds) * time.Second,
		RegistrationGrace: time.Duration(config.Connection.RegistrationGraceMs) * time.Millisecond,
		QuitMessage:       config.Identity.QuitMessage,
	})
	if err != nil {
		log.Fatalf("Invalid client options: %v", err)
	}

	if *debugLog != "" {
		f, err := os.OpenFile(*debugLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("Failed to open debug log: %v", err)
		}
		defer f.Close()
		c.SetLogger(log.New(f, "", log.LstdFlags|log.Lmicroseconds))
	}

	if err := c.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}

	state.SetLastNickname(handle)
	state.RecordConnection(addr, handle)

	model := ui.NewModel(c, ui.Options{
		ShowTimestamps:  config.UI.ShowTimestamps,
		NotifyOnPrivate: config.UI.NotifyOnPrivate,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
