package tray

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/prism-io/prism-shell/internal/shell/probe"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
)

// Labels are the tray strings for one locale.
type Labels struct {
	Header      string
	Show        string
	Hide        string
	Quit        string
	Checking    string
	Healthy     string
	Unreachable string
	Unknown     string
	Stopped     string
	External    string
}

var supported = []language.Tag{language.English, language.SimplifiedChinese}

var catalog = []Labels{
	{
		Header:      "Prism",
		Show:        "Show Main Window",
		Hide:        "Hide Main Window",
		Quit:        "Quit",
		Checking:    "Core: checking...",
		Healthy:     "Core: running",
		Unreachable: "Core: unreachable",
		Unknown:     "Core: not responding",
		Stopped:     "Core: stopped",
		External:    "external",
	},
	{
		Header:      "Prism",
		Show:        "显示主窗口",
		Hide:        "隐藏主窗口",
		Quit:        "退出应用",
		Checking:    "核心服务：检查中...",
		Healthy:     "核心服务：运行中",
		Unreachable: "核心服务：无法连接",
		Unknown:     "核心服务：无响应",
		Stopped:     "核心服务：已停止",
		External:    "外部",
	},
}

var matcher = language.NewMatcher(supported)

// LabelsFor returns the labels best matching locale, which may be a BCP 47
// tag or a POSIX locale such as "zh_CN.UTF-8". English is the fallback.
func LabelsFor(locale string) Labels {
	tag, err := language.Parse(normalizeLocale(locale))
	if err != nil {
		return catalog[0]
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return catalog[0]
	}
	return catalog[idx]
}

// HostLocale returns the user's locale from the environment.
func HostLocale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" && v != "C" && v != "POSIX" {
			return normalizeLocale(v)
		}
	}
	return "en"
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	return strings.ReplaceAll(s, "_", "-")
}

// StatusTitle renders a health report for the status menu item.
func StatusTitle(l Labels, r supervisor.Report) string {
	var title string
	switch {
	case r.Managed && !r.Running && r.PID == 0:
		title = l.Stopped
	case r.Health == probe.HealthHealthy:
		title = l.Healthy
	case r.Health == probe.HealthUnreachable:
		title = l.Unreachable
	default:
		title = l.Unknown
	}
	if !r.Managed {
		title = fmt.Sprintf("%s (%s)", title, l.External)
	} else if r.Running && r.PID > 0 {
		title = fmt.Sprintf("%s (pid %d)", title, r.PID)
	}
	return title
}
