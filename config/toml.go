package config

const MonitorConfigTemplate = `log_level = "{{ .LogLevel }}"

[notifier]
webhook_url = "{{ .Notifier.WebhookUrl }}"
username = "{{ .Notifier.Username }}"

[chains]{{ range $k, $v := .Chains }}
	[chains.{{ $k }}]
	chain = "{{ $k }}"
	block_time = {{ $v.BlockTime }}
	pending_timeout = {{ $v.PendingTimeout }}
	dedup_capacity = {{ $v.DedupCapacity }}
	tokens = {{ $v.Tokens }}
	explorer_url = "{{ $v.ExplorerUrl }}"
	watch_addrs = [{{ range $v.WatchAddrs }}"{{ . }}", {{ end }}]
	{{ range $v.Endpoints }}
	[[chains.{{ $k }}.endpoints]]
	name = "{{ .Name }}"
	kind = "{{ .Kind }}"
	url = "{{ .Url }}"
	role = "{{ .Role }}"
	pending_txs = {{ .PendingTxs }}
	{{ end }}
{{ end }}
`
