// Package config turns viper settings into one immutable Config value.
//
// The file layout matches the deployment secrets file of the review team, so
// an existing secrets.toml can be passed to --config unchanged:
//
//	[openai]
//	api_key = "sk-..."
//
//	[app_settings]
//	sheet_url = "https://docs.google.com/spreadsheets/d/<id>"
//	source_sheet = "支援审核订单详情"
//	target_sheet = "电核订单英文翻译"
//	monthly_budget = 100.0
//	max_daily_orders = 500
//	cost_per_1k_tokens = 0.002
//
//	[google_credentials]
//	type = "service_account"
//	...
//
// Core packages never read viper or the environment themselves.
package config
