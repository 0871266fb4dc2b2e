package settings

// permittedAgentKeys is the allow-list of agent config keys users are permitted
// to configure. Keys that control recording/instrumentation or the agent's own
// file layout are deliberately absent.
var permittedAgentKeys = map[string]struct{}{
	// Circuit-Breaker:
	"circuit_breaker_enabled":                    {},
	"stress_monitoring_interval":                 {},
	"stress_monitor_gc_stress_threshold":         {},
	"stress_monitor_gc_relief_threshold":         {},
	"stress_monitor_cpu_duration_threshold":      {},
	"stress_monitor_system_cpu_stress_threshold": {},
	"stress_monitor_system_cpu_relief_threshold": {},

	// Core:
	// 'enabled', 'recording' and 'instrument' are controlled by the gate flags.
	"service_name":                             {},
	"service_node_name":                        {},
	"hostname":                                 {},
	"environment":                              {},
	"transaction_sample_rate":                  {},
	"transaction_max_spans":                    {},
	"long_field_max_length":                    {},
	"sanitize_field_names":                     {},
	"enable_instrumentations":                  {},
	"disable_instrumentations":                 {},
	"unnest_exceptions":                        {},
	"ignore_exceptions":                        {},
	"capture_body":                             {},
	"capture_headers":                          {},
	"global_labels":                            {},
	"instrument_ancient_bytecode":              {},
	"context_propagation_only":                 {},
	"classes_excluded_from_instrumentation":    {},
	"trace_methods":                            {},
	"trace_methods_duration_threshold":         {},
	"breakdown_metrics":                        {},
	"plugins_dir":                              {},
	"use_elastic_traceparent_header":           {},
	"disable_outgoing_tracecontext_headers":    {},
	"span_min_duration":                        {},
	"cloud_provider":                           {},
	"enable_public_api_annotation_inheritance": {},
	"transaction_name_groups":                  {},
	"trace_continuation_strategy":              {},
	"baggage_to_attach":                        {},

	// HTTP:
	"capture_body_content_types":     {},
	"transaction_ignore_urls":        {},
	"transaction_ignore_user_agents": {},
	"use_path_as_transaction_name":   {},

	// Huge Traces:
	"span_compression_enabled":                  {},
	"span_compression_exact_match_max_duration": {},
	"span_compression_same_kind_max_duration":   {},
	"exit_span_min_duration":                    {},

	// JMX:
	"capture_jmx_metrics": {},

	// Logging:
	"log_level":                              {},
	"log_ecs_reformatting":                   {},
	"log_ecs_reformatting_additional_fields": {},
	"log_ecs_formatter_allow_list":           {},
	"log_file_size":                          {},
	"log_sending":                            {},

	// Metrics:
	"dedot_custom_metrics":                {},
	"custom_metrics_histogram_boundaries": {},
	"metric_set_limit":                    {},
	"agent_reporter_health_metrics":       {},
	"agent_background_overhead_metrics":   {},

	// Profiling:
	"profiling_inferred_spans_enabled":           {},
	"profiling_inferred_spans_logging_enabled":   {},
	"profiling_inferred_spans_sampling_interval": {},
	"profiling_inferred_spans_min_duration":      {},
	"profiling_inferred_spans_included_classes":  {},
	"profiling_inferred_spans_excluded_classes":  {},
	"profiling_inferred_spans_lib_directory":     {},

	// Reporter:
	// secrets are configured through dedicated secure settings.
	"server_url":           {},
	"server_urls":          {},
	"disable_send":         {},
	"server_timeout":       {},
	"verify_server_cert":   {},
	"max_queue_size":       {},
	"include_process_args": {},
	"api_request_time":     {},
	"api_request_size":     {},
	"metrics_interval":     {},
	"disable_metrics":      {},

	// Serverless:
	"aws_lambda_handler": {},
	"data_flush_timeout": {},

	// Stacktraces:
	"application_packages":          {},
	"stack_trace_limit":             {},
	"span_stack_trace_min_duration": {},
}

// IsPermittedAgentKey reports whether key (without prefix) may be configured.
func IsPermittedAgentKey(key string) bool {
	_, ok := permittedAgentKeys[key]
	return ok
}
