/*
Package metrics defines the Prometheus collectors exported by the asset
browser.

All collectors are registered with the default registry via promauto at
package initialization and are exposed by the status server's /metrics
endpoint. Metric names share the asset_browser_ prefix.
*/
package metrics
