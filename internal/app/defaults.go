package app

// defaults covers every key the service reads so a minimal config file is
// enough to boot locally.
var defaults = map[string]any{
	"app.tz":                                      "UTC",
	"app.server.max_goroutine":                    8,
	"app.server.cors":                             []string{"*"},
	"app.server.http.address":                     ":8080",
	"app.server.http.read_timeout_seconds":        10,
	"app.server.http.read_header_timeout_seconds": 5,
	"app.server.http.write_timeout_seconds":       10,
	"app.server.http.idle_timeout_seconds":        60,

	"instrument.enabled":                 false,
	"instrument.service_name":            "gotp",
	"instrument.service_version":         "0.0.0",
	"instrument.env":                     "local",
	"instrument.trace_sample_ratio":      1.0,
	"instrument.metric_interval_seconds": 15,
	"instrument.log_level":               "info",

	"store.driver":                 "redis",
	"store.sweep_interval_seconds": 30,
	"redis.url":                    "redis://localhost:6379/0",

	"database.pool.max_conns":                   10,
	"database.pool.min_conns":                   1,
	"database.pool.max_conn_lifetime_seconds":   3600,
	"database.pool.max_conn_idle_seconds":       300,
	"database.pool.health_check_period_seconds": 30,

	"mail.port":            587,
	"mail.timeout_seconds": 10,

	"messaging.nats.url":                     "nats://localhost:4222",
	"messaging.nats.name":                    "gotp",
	"messaging.nats.max_reconnects":          -1,
	"messaging.nats.timeout_seconds":         5,
	"messaging.nats.reconnect_wait_seconds":  2,
	"messaging.nats.ping_interval_seconds":   20,
	"messaging.nats.retry_on_failed_connect": true,
	"messaging.kafka.brokers":                []string{"localhost:9092"},
	"messaging.kafka.batch_timeout_ms":       10,
	"messaging.memory.buffer":                256,

	"uid.snowflake.node": 1,

	"breaker.default.window_size":                  10,
	"breaker.default.minimum_calls":                5,
	"breaker.default.failure_rate_threshold":       50,
	"breaker.default.slow_call_rate_threshold":     100,
	"breaker.default.slow_call_duration_ms":        5000,
	"breaker.default.wait_duration_ms":             30000,
	"breaker.default.permitted_calls_in_half_open": 3,

	"otp.length":           6,
	"otp.expiry_seconds":   300,
	"otp.cooldown_seconds": 30,
	"otp.hash.enabled":     true,
	"otp.hash.algorithm":   "sha256",
	"otp.expose_code":      false,

	"notification.locale.default":                    "en_US",
	"notification.orig_system":                       "gotp",
	"notification.dispatch.workers":                  16,
	"notification.dispatch.queue_size":               1024,
	"notification.dispatch.transport":                "local",
	"notification.dispatch.topic":                    "otp.notification.dispatch",
	"notification.dispatch.group":                    "gotp-dispatcher",
	"notification.dispatch.concurrency":              4,
	"notification.sender.driver":                     "simulation",
	"notification.sender.simulation.delay_ms":        100,
	"notification.sender.simulation.failure_rate":    0.0,
	"notification.sender.simulation.timeout_ms":      2000,
	"notification.sender.salesforce.timeout_seconds": 10,
	"notification.sender.smtp.subject":               "Your verification code",
	"notification.auth.mode":                         "sfmc",
	"notification.auth.token_ttl_seconds":            1200,
	"notification.auth.refresh_margin_seconds":       60,
	"notification.auth.timeout_seconds":              10,
	"notification.status.driver":                     "memory",
	"notification.status.ttl_seconds":                86400,
}
