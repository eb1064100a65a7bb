package tray

import (
	"testing"

	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

func TestMenuEnabled(t *testing.T) {
	tests := []struct {
		state    visibility.State
		wantShow bool
		wantHide bool
	}{
		{visibility.Visible, true, true},
		{visibility.Hidden, true, false},
		{visibility.Terminated, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			show, hide := menuEnabled(tt.state)
			if show != tt.wantShow || hide != tt.wantHide {
				t.Errorf("menuEnabled(%v) = (%v, %v), want (%v, %v)", tt.state, show, hide, tt.wantShow, tt.wantHide)
			}
		})
	}
}

func TestSetVisibilityBeforeReady(t *testing.T) {
	// No menu items exist until the tray is running.
	SetVisibility(visibility.Hidden)
	SetVisibility(visibility.Visible)
}
