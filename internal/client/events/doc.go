// Package events is the in-process publish/subscribe bus that keeps views
// consistent within a tab, plus the transports that carry the same events
// to other tabs sharing the durable store.
//
// Local delivery is synchronous and ordered by subscription. Cross-tab
// delivery is at-least-once and unordered; the bus drops its own echoes and
// skips payloads identical to the last one applied for a topic and scope.
package events
