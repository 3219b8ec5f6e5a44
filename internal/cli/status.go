package cli

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/molubot/molubot/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ MoluBot Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 MoluBot Status")
		fmt.Printf("Version: %s\n", version)

		configPath, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Println("Config:  ✓ Found (" + configPath + ")")
			} else {
				fmt.Println("Config:  ✗ Not found (defaults in use)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Println("API Key: ? Unable to load config")
			return
		}
		if cfg.Provider.APIKey != "" {
			fmt.Println("API Key: ✓ Found")
		} else {
			fmt.Println("API Key: ✗ Not found (set ANTHROPIC_API_KEY)")
		}

		url := fmt.Sprintf("http://%s:%d/healthz", cfg.Gateway.Host, cfg.Gateway.Port)
		client := &http.Client{Timeout: 2 * time.Second}
		resp, err := client.Get(url)
		if err != nil {
			fmt.Println("Gateway: ✗ Not running (" + url + ")")
			return
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			fmt.Println("Gateway: ✓ Healthy (" + url + ")")
		} else {
			fmt.Printf("Gateway: ✗ Unhealthy (status %d)\n", resp.StatusCode)
		}
	},
}
