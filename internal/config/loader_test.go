package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/slamweb/slam/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DraftCapacity, convey.ShouldEqual, 256)
				convey.So(cfg.RecognitionQueueSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("SLAM_ADDR", ":8080")
			t.Setenv("SLAM_API_BASE_URL", "https://slam.example/api")
			t.Setenv("SLAM_API_TIMEOUT", "5s")
			t.Setenv("SLAM_EXTRA_PER_ROW", "2")
			t.Setenv("SLAM_DEFAULT_LANG", "en")
			t.Setenv("SLAM_ALLOWED_ORIGINS", "http://a.test,http://b.test")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "https://slam.example/api")
				convey.So(cfg.APITimeout, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.ExtraPerRow, convey.ShouldEqual, 2)
				convey.So(cfg.DefaultLang, convey.ShouldEqual, "en")
				convey.So(cfg.AllowedOrigins, convey.ShouldResemble, []string{"http://a.test", "http://b.test"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeFile(t, "slam.yaml", `
addr: ":9090"
recognition_workers: 3
draft_capacity: 10
ai_timeout: 2m
`)
			t.Setenv("SLAM_CONFIG", path)
			t.Setenv("SLAM_RECOGNITION_WORKERS", "5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides the file and the file overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.RecognitionWorkers, convey.ShouldEqual, 5)
				convey.So(cfg.DraftCapacity, convey.ShouldEqual, 10)
				convey.So(cfg.AITimeout, convey.ShouldEqual, 2*time.Minute)
				convey.So(cfg.MaxPageSize, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When a .env file is present", func() {
			path := writeFile(t, "test.env", "SLAM_LOG_LEVEL=debug\nSLAM_ADDR=:7070\n")
			t.Setenv("SLAM_ENV_FILE", path)
			t.Setenv("SLAM_ADDR", ":6060")
			defer func() { _ = os.Unsetenv("SLAM_LOG_LEVEL") }()

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values apply without overriding the real environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			t.Setenv("SLAM_CONFIG", writeFile(t, "bad.yaml", `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("SLAM_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with empty addr", func() {
			t.Setenv("SLAM_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			t.Setenv("SLAM_DRAFT_CAPACITY", "lots")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("SLAM_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, name := range []string{
		"SLAM_CONFIG", "SLAM_ADDR", "SLAM_API_BASE_URL", "SLAM_API_TIMEOUT", "SLAM_AI_TIMEOUT",
		"SLAM_EXTRA_PER_ROW", "SLAM_DEFAULT_LANG", "SLAM_ALLOWED_ORIGINS", "SLAM_RECOGNITION_WORKERS",
		"SLAM_DRAFT_CAPACITY", "SLAM_LOG_LEVEL",
	} {
		_ = os.Unsetenv(name)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
