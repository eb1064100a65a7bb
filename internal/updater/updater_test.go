package updater

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseSemver(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1.2.3", "1.2.3", false},
		{"v0.10.0", "0.10.0", false},
		{"2.0.0-rc.1", "2.0.0-rc.1", false},
		{"1.4.0+build.7", "1.4.0", false},
		{"dev", "", true},
		{"1.2", "", true},
		{"1.x.3", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSemver(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSemver(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("ParseSemver(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestLessThan(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.0.0", "1.0.1", true},
		{"1.2.0", "1.10.0", true},
		{"2.0.0", "1.9.9", false},
		{"1.0.0", "1.0.0", false},
		{"1.0.0-rc.1", "1.0.0", true},
		{"1.0.0", "1.0.0-rc.1", false},
	}
	for _, tt := range tests {
		a, _ := ParseSemver(tt.a)
		b, _ := ParseSemver(tt.b)
		if got := a.LessThan(b); got != tt.want {
			t.Errorf("%s < %s = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCheckWithoutFeed(t *testing.T) {
	c := NewChecker("")
	c.current = "1.0.0"

	res, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if res.HasUpdate || res.CurrentVersion != "1.0.0" || res.LatestVersion != "1.0.0" {
		t.Errorf("Check() = %+v, want no update at 1.0.0", res)
	}
	if _, ok := c.Last(); !ok {
		t.Error("Last() not recorded")
	}
}

func TestCheckFeed(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		status    int
		body      string
		wantErr   bool
		hasUpdate bool
		latest    string
	}{
		{"newer release", "1.0.0", 200, `{"tag_name":"v1.1.0","html_url":"https://example.test/r"}`, false, true, "1.1.0"},
		{"same release", "1.1.0", 200, `{"tag_name":"v1.1.0"}`, false, false, "1.1.0"},
		{"older release", "2.0.0", 200, `{"tag_name":"v1.1.0"}`, false, false, "1.1.0"},
		{"dev build", "dev", 200, `{"tag_name":"v0.1.0"}`, false, true, "0.1.0"},
		{"no releases", "1.0.0", 404, ``, false, false, "1.0.0"},
		{"server error", "1.0.0", 500, ``, true, false, ""},
		{"bad tag", "1.0.0", 200, `{"tag_name":"nightly"}`, true, false, ""},
		{"bad json", "1.0.0", 200, `{`, true, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewChecker(srv.URL)
			c.current = tt.current

			res, err := c.Check(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if res.HasUpdate != tt.hasUpdate || res.LatestVersion != tt.latest {
				t.Errorf("Check() = %+v, want has_update=%v latest=%s", res, tt.hasUpdate, tt.latest)
			}
		})
	}
}
