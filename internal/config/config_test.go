package config

import (
	"reflect"
	"testing"
	"time"
)

func TestDefaultConstants(t *testing.T) {
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"DefaultWorkerCount", DefaultWorkerCount, 1},
		{"DefaultSearchLimit", DefaultSearchLimit, 10},
		{"DefaultHost", DefaultHost, "0.0.0.0"},
		{"DefaultPort", DefaultPort, 8080},
		{"DefaultLogLevel", DefaultLogLevel, "INFO"},
		{"DefaultCloneSubdir", DefaultCloneSubdir, "repos"},
		{"DefaultEndpointParallelTasks", DefaultEndpointParallelTasks, 10},
		{"DefaultEndpointTimeout", DefaultEndpointTimeout, 60 * time.Second},
		{"DefaultEndpointMaxRetries", DefaultEndpointMaxRetries, 5},
		{"DefaultEndpointInitialDelay", DefaultEndpointInitialDelay, 2 * time.Second},
		{"DefaultEndpointBackoffFactor", DefaultEndpointBackoffFactor, 2.0},
		{"DefaultEndpointMaxTokens", DefaultEndpointMaxTokens, 4000},
		{"DefaultPeriodicSyncInterval", DefaultPeriodicSyncInterval, 1800.0},
		{"DefaultPeriodicSyncRetries", DefaultPeriodicSyncRetries, 3},
		{"DefaultRemoteTimeout", DefaultRemoteTimeout, 30 * time.Second},
		{"DefaultRemoteMaxRetries", DefaultRemoteMaxRetries, 3},
		{"DefaultReportingInterval", DefaultReportingInterval, 5 * time.Second},
	}
	for _, c := range checks {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestReportingConfig(t *testing.T) {
	cfg := NewReportingConfig()
	if cfg.LogTimeInterval() != DefaultReportingInterval {
		t.Errorf("LogTimeInterval() = %v, want %v", cfg.LogTimeInterval(), DefaultReportingInterval)
	}

	cfg = cfg.WithLogTimeInterval(10 * time.Second)
	if cfg.LogTimeInterval() != 10*time.Second {
		t.Errorf("LogTimeInterval() = %v, want 10s", cfg.LogTimeInterval())
	}
}

func TestLiteLLMCacheConfig(t *testing.T) {
	cfg := NewLiteLLMCacheConfig()
	if !cfg.Enabled() {
		t.Error("caching should default to enabled")
	}
	if cfg.WithEnabled(false).Enabled() {
		t.Error("WithEnabled(false) should disable caching")
	}
}

func TestEndpoint_Defaults(t *testing.T) {
	e := NewEndpoint()

	if e.NumParallelTasks() != DefaultEndpointParallelTasks {
		t.Errorf("NumParallelTasks() = %v, want %v", e.NumParallelTasks(), DefaultEndpointParallelTasks)
	}
	if e.Timeout() != DefaultEndpointTimeout {
		t.Errorf("Timeout() = %v, want %v", e.Timeout(), DefaultEndpointTimeout)
	}
	if e.MaxRetries() != DefaultEndpointMaxRetries {
		t.Errorf("MaxRetries() = %v, want %v", e.MaxRetries(), DefaultEndpointMaxRetries)
	}
	if e.InitialDelay() != DefaultEndpointInitialDelay {
		t.Errorf("InitialDelay() = %v, want %v", e.InitialDelay(), DefaultEndpointInitialDelay)
	}
	if e.BackoffFactor() != DefaultEndpointBackoffFactor {
		t.Errorf("BackoffFactor() = %v, want %v", e.BackoffFactor(), DefaultEndpointBackoffFactor)
	}
	if e.MaxTokens() != DefaultEndpointMaxTokens {
		t.Errorf("MaxTokens() = %v, want %v", e.MaxTokens(), DefaultEndpointMaxTokens)
	}
	if e.IsConfigured() {
		t.Error("an endpoint with no model must not report as configured")
	}
}

func TestEndpoint_WithOptions(t *testing.T) {
	e := NewEndpointWithOptions(
		WithBaseURL("https://api.example.com"),
		WithModel("gpt-4"),
		WithAPIKey("test-key"),
		WithNumParallelTasks(20),
		WithTimeout(30*time.Second),
		WithMaxRetries(3),
	)

	if e.BaseURL() != "https://api.example.com" {
		t.Errorf("BaseURL() = %v", e.BaseURL())
	}
	if e.Model() != "gpt-4" {
		t.Errorf("Model() = %v", e.Model())
	}
	if e.APIKey() != "test-key" {
		t.Errorf("APIKey() = %v", e.APIKey())
	}
	if e.NumParallelTasks() != 20 {
		t.Errorf("NumParallelTasks() = %v", e.NumParallelTasks())
	}
	if e.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v", e.Timeout())
	}
	if e.MaxRetries() != 3 {
		t.Errorf("MaxRetries() = %v", e.MaxRetries())
	}
	if !e.IsConfigured() {
		t.Error("setting a model marks the endpoint configured")
	}
}

func TestEndpoint_ExtraParams(t *testing.T) {
	e := NewEndpointWithOptions(WithExtraParams(map[string]any{"key": "value"}))

	got := e.ExtraParams()
	if got["key"] != "value" {
		t.Errorf("ExtraParams()[key] = %v, want value", got["key"])
	}

	got["key"] = "modified"
	if e.ExtraParams()["key"] == "modified" {
		t.Error("mutating the returned map must not change the endpoint")
	}

	if NewEndpoint().ExtraParams() != nil {
		t.Error("ExtraParams() should be nil when never set")
	}
}

func TestSearchConfig(t *testing.T) {
	cfg := NewSearchConfig()
	if cfg.Provider() != SearchProviderSQLite {
		t.Errorf("Provider() = %v, want sqlite", cfg.Provider())
	}
	if cfg.WithProvider(SearchProviderVectorChord).Provider() != SearchProviderVectorChord {
		t.Error("WithProvider should switch to vectorchord")
	}
}

func TestGitConfig(t *testing.T) {
	cfg := NewGitConfig()
	if cfg.Provider() != GitProviderDulwich {
		t.Errorf("Provider() = %v, want dulwich", cfg.Provider())
	}
	if cfg.WithProvider(GitProviderPygit2).Provider() != GitProviderPygit2 {
		t.Error("WithProvider should switch to pygit2")
	}
}

func TestPeriodicSyncConfig(t *testing.T) {
	cfg := NewPeriodicSyncConfig()

	if !cfg.Enabled() {
		t.Error("periodic sync should default to enabled")
	}
	wantInterval := time.Duration(DefaultPeriodicSyncInterval * float64(time.Second))
	if cfg.Interval() != wantInterval {
		t.Errorf("Interval() = %v, want %v", cfg.Interval(), wantInterval)
	}
	if cfg.RetryAttempts() != DefaultPeriodicSyncRetries {
		t.Errorf("RetryAttempts() = %v, want %v", cfg.RetryAttempts(), DefaultPeriodicSyncRetries)
	}

	cfg = cfg.WithEnabled(false).WithIntervalSeconds(3600).WithRetryAttempts(5)
	if cfg.Enabled() {
		t.Error("Enabled() should be false after WithEnabled(false)")
	}
	if cfg.Interval() != time.Hour {
		t.Errorf("Interval() = %v, want 1h", cfg.Interval())
	}
	if cfg.RetryAttempts() != 5 {
		t.Errorf("RetryAttempts() = %v, want 5", cfg.RetryAttempts())
	}
}

func TestRemoteConfig(t *testing.T) {
	cfg := NewRemoteConfig()

	if cfg.IsConfigured() {
		t.Error("a remote with no server URL must not report as configured")
	}
	if cfg.Timeout() != DefaultRemoteTimeout {
		t.Errorf("Timeout() = %v, want %v", cfg.Timeout(), DefaultRemoteTimeout)
	}
	if cfg.MaxRetries() != DefaultRemoteMaxRetries {
		t.Errorf("MaxRetries() = %v, want %v", cfg.MaxRetries(), DefaultRemoteMaxRetries)
	}
	if !cfg.VerifySSL() {
		t.Error("SSL verification should default to on")
	}
}

func TestRemoteConfig_WithOptions(t *testing.T) {
	cfg := NewRemoteConfigWithOptions(
		WithServerURL("https://remote.example.com"),
		WithRemoteAPIKey("remote-key"),
		WithRemoteTimeout(60*time.Second),
		WithRemoteMaxRetries(5),
		WithVerifySSL(false),
	)

	if cfg.ServerURL() != "https://remote.example.com" {
		t.Errorf("ServerURL() = %v", cfg.ServerURL())
	}
	if cfg.APIKey() != "remote-key" {
		t.Errorf("APIKey() = %v", cfg.APIKey())
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	if cfg.MaxRetries() != 5 {
		t.Errorf("MaxRetries() = %v", cfg.MaxRetries())
	}
	if cfg.VerifySSL() {
		t.Error("VerifySSL() should be false")
	}
	if !cfg.IsConfigured() {
		t.Error("setting a server URL marks the remote configured")
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	if cfg.Host() != DefaultHost {
		t.Errorf("Host() = %v, want %v", cfg.Host(), DefaultHost)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %v, want %v", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %v, want %v", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.LogFormat() != LogFormatPretty {
		t.Errorf("LogFormat() = %v, want pretty", cfg.LogFormat())
	}
	if cfg.DisableTelemetry() {
		t.Error("telemetry should default to on")
	}
	if cfg.EmbeddingEndpoint() != nil {
		t.Error("EmbeddingEndpoint() should be nil by default")
	}
	if cfg.EnrichmentEndpoint() != nil {
		t.Error("EnrichmentEndpoint() should be nil by default")
	}
	if cfg.IsRemote() {
		t.Error("IsRemote() should be false by default")
	}
	if cfg.WorkerCount() != DefaultWorkerCount {
		t.Errorf("WorkerCount() = %v, want %v", cfg.WorkerCount(), DefaultWorkerCount)
	}
	if cfg.SearchLimit() != DefaultSearchLimit {
		t.Errorf("SearchLimit() = %v, want %v", cfg.SearchLimit(), DefaultSearchLimit)
	}
}

func TestAppConfig_WithOptions(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithDataDir("/custom/data"),
		WithDBURL("postgres://localhost/kodit"),
		WithLogLevel("DEBUG"),
		WithLogFormat(LogFormatJSON),
		WithDisableTelemetry(true),
		WithEmbeddingEndpoint(NewEndpointWithOptions(WithModel("embed-model"))),
		WithEnrichmentEndpoint(NewEndpointWithOptions(WithModel("enrich-model"))),
		WithAPIKeys([]string{"key1", "key2"}),
		WithRemoteConfig(NewRemoteConfigWithOptions(WithServerURL("https://remote.com"))),
	)

	if cfg.DataDir() != "/custom/data" {
		t.Errorf("DataDir() = %v", cfg.DataDir())
	}
	if cfg.DBURL() != "postgres://localhost/kodit" {
		t.Errorf("DBURL() = %v", cfg.DBURL())
	}
	if cfg.LogLevel() != "DEBUG" {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
	if cfg.LogFormat() != LogFormatJSON {
		t.Errorf("LogFormat() = %v", cfg.LogFormat())
	}
	if !cfg.DisableTelemetry() {
		t.Error("DisableTelemetry() should be true")
	}
	if cfg.EmbeddingEndpoint() == nil || cfg.EnrichmentEndpoint() == nil {
		t.Error("both endpoints should be set")
	}
	if len(cfg.APIKeys()) != 2 {
		t.Errorf("APIKeys() length = %v, want 2", len(cfg.APIKeys()))
	}
	if !cfg.IsRemote() {
		t.Error("a configured remote should flip IsRemote()")
	}
}

func TestAppConfig_APIKeysAreCopied(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithAPIKeys([]string{"key1"}))

	keys := cfg.APIKeys()
	keys[0] = "modified"

	if cfg.APIKeys()[0] == "modified" {
		t.Error("mutating the returned slice must not change the config")
	}
}

func TestAppConfig_Directories(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDataDir("/data"))

	if cfg.CloneDir() != "/data/repos" {
		t.Errorf("CloneDir() = %v, want /data/repos", cfg.CloneDir())
	}
	if cfg.LiteLLMCacheDir() != "/data/litellm_cache" {
		t.Errorf("LiteLLMCacheDir() = %v, want /data/litellm_cache", cfg.LiteLLMCacheDir())
	}
}

func TestAppConfig_DataDirDerivesDBURL(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDataDir("/custom"))

	if cfg.DBURL() != "sqlite:////custom/kodit.db" {
		t.Errorf("DBURL() = %v, want sqlite:////custom/kodit.db", cfg.DBURL())
	}
}

func TestParseAPIKeys(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"", []string{}},
		{"key1", []string{"key1"}},
		{"key1,key2,key3", []string{"key1", "key2", "key3"}},
		{"key1 , key2 , key3", []string{"key1", "key2", "key3"}},
		{"key1,,key2", []string{"key1", "key2"}},
		{"key1,  ,key2", []string{"key1", "key2"}},
	}

	for _, c := range cases {
		if got := ParseAPIKeys(c.input); !reflect.DeepEqual(got, c.want) {
			t.Errorf("ParseAPIKeys(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}
