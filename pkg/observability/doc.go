/*
Package observability turns engine lifecycle events into metrics and logs.

Both Metrics.Hooks and LogHooks return domain.LifecycleHooks, so they can be combined
with domain.ChainHooks and handed to runtime.WithLifecycleHooks or ports.WithHooks.
*/
package observability
