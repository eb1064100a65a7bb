package tray

import (
	"fmt"
	"log"
	"sync"

	"github.com/getlantern/systray"

	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

var (
	state   ShellState
	labels  Labels
	onStart func()
	onExit  func()
	stopCh  chan struct{}

	// Items are created in onReady; itemsMu guards updates from other
	// goroutines that may race with it.
	itemsMu    sync.Mutex
	headerItem *systray.MenuItem
	statusItem *systray.MenuItem
	showItem   *systray.MenuItem
	hideItem   *systray.MenuItem
	quitItem   *systray.MenuItem
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (start the shell services here).
// onExitFn is called when the tray exits (cleanup here).
func Run(s ShellState, l Labels, onStartFn, onExitFn func()) {
	state = s
	labels = l
	onStart = onStartFn
	onExit = onExitFn
	stopCh = make(chan struct{})
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetTemplateIcon(iconData, iconData)
	systray.SetTooltip(labels.Header)

	itemsMu.Lock()
	// The header doubles as the primary click target: systray exposes no
	// icon click event on every platform.
	headerItem = systray.AddMenuItem(labels.Header, labels.Show)
	statusItem = systray.AddMenuItem(labels.Checking, "")
	statusItem.Disable()

	systray.AddSeparator()

	showItem = systray.AddMenuItem(labels.Show, "")
	hideItem = systray.AddMenuItem(labels.Hide, "")

	systray.AddSeparator()

	quitItem = systray.AddMenuItem(labels.Quit, "")
	itemsMu.Unlock()

	// Start the shell services
	if onStart != nil {
		onStart()
	}

	if state != nil {
		systray.SetTooltip(fmt.Sprintf("%s · %d", labels.Header, state.Port()))
	}
	SetVisibility(visibility.Visible)

	go handleClicks()
}

func onQuit() {
	close(stopCh)
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		var ev visibility.Event
		select {
		case <-stopCh:
			return
		case <-headerItem.ClickedCh:
			ev = visibility.EventTrayClick
		case <-showItem.ClickedCh:
			ev = visibility.EventMenuShow
		case <-hideItem.ClickedCh:
			ev = visibility.EventMenuHide
		case <-quitItem.ClickedCh:
			ev = visibility.EventMenuQuit
		}
		if state == nil {
			continue
		}
		if _, err := state.Dispatch(ev); err != nil {
			log.Printf("[tray] %s: %v", ev, err)
		}
	}
}

// SetHealth updates the status item and tooltip from a health report.
func SetHealth(r supervisor.Report) {
	itemsMu.Lock()
	defer itemsMu.Unlock()
	if statusItem == nil {
		return
	}
	title := StatusTitle(labels, r)
	statusItem.SetTitle(title)
	systray.SetTooltip(labels.Header + " · " + title)
}

// SetVisibility updates which window items are enabled.
func SetVisibility(s visibility.State) {
	itemsMu.Lock()
	defer itemsMu.Unlock()
	if showItem == nil {
		return
	}
	show, hide := menuEnabled(s)
	setEnabled(showItem, show)
	setEnabled(hideItem, hide)
}

// menuEnabled reports which window items apply in state s. Show stays
// enabled while visible so it can refocus the window.
func menuEnabled(s visibility.State) (show, hide bool) {
	switch s {
	case visibility.Visible:
		return true, true
	case visibility.Hidden:
		return true, false
	default:
		return false, false
	}
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}
