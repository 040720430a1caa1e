package config

import (
	"reflect"
	"testing"

	"github.com/spf13/viper"
)

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins([]string{"http://a.test, http://b.test", " ", "http://c.test"})
	want := []string{"http://a.test", "http://b.test", "http://c.test"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected origins: got=%v want=%v", got, want)
	}
}

func TestDefaultsCoverCartAndSession(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected default driver: %s", cfg.Database.Driver)
	}
	if cfg.Security.PasswordPolicy.MinLength != 8 {
		t.Fatalf("unexpected password min length: %d", cfg.Security.PasswordPolicy.MinLength)
	}
	if cfg.Cart.LowStockThreshold != 5 {
		t.Fatalf("unexpected low stock threshold: %d", cfg.Cart.LowStockThreshold)
	}
	if cfg.Session.CookieName != "wp_session" {
		t.Fatalf("unexpected cookie name: %s", cfg.Session.CookieName)
	}
	if cfg.Security.AdminRBAC.Enabled {
		t.Fatalf("admin rbac should be disabled by default")
	}
}
