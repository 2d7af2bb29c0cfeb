/*
Package x contains the wallet extensions.

Each sub-package implements one concern of the governance engine
(handlers, models, buckets) and they are combined together in app.
This package holds the small set of helpers they all share, most
notably the Authenticator used to learn who the caller is.
*/
package x
