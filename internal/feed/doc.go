// Package feed turns polled REST endpoints into a publish/subscribe feed.
//
// The Registry keeps, per endpoint, the set of subscribed handlers and at
// most one poller goroutine:
//   - The first Subscribe for an endpoint starts its poller
//   - Every tick issues one GET and fans the result out to all handlers
//   - A failed GET is delivered as an Update carrying the error
//   - The last Unsubscribe cancels the poller
//
// Handlers for one endpoint are called sequentially from that endpoint's
// poller goroutine. There is no ordering between endpoints.
package feed
