package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"findash/internal/config"
	"findash/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Listen: %s:%d", cfg.Host, cfg.Port),
		fmt.Sprintf("Redis: %s", presence(cfg.RedisEnabled())),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		fmt.Sprintf("Session: market=%s refresh=%s kite=%s",
			cfg.InitialMarket(), cfg.Session.RefreshInterval, presence(cfg.Session.KiteAccessToken != "")),
		sectionLine("Market config", cfg.Market),
		sectionLine("Assistant config", cfg.Assistant),
	}
	if mc := cfg.Market.Value; mc != nil {
		lines = append(lines, fmt.Sprintf("Market providers: %s", strings.Join(mc.ProviderNames(), ", ")))
		for _, raw := range sortedKeys(mc.Routing) {
			lines = append(lines, fmt.Sprintf("Route %s -> %s", raw, mc.Routing[raw]))
		}
	}
	if ac := cfg.Assistant.Value; ac != nil {
		choices := make([]string, 0, len(ac.Choices()))
		for _, c := range ac.Choices() {
			choices = append(choices, string(c))
		}
		lines = append(lines, fmt.Sprintf("Assistant providers: %s (default %s)", strings.Join(choices, ", "), ac.DefaultChoice()))
	}
	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
