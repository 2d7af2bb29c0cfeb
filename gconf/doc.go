/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension keeps at most one configuration object, stored under the
"_c:<package>" key. A configuration is loaded from the genesis file and can
later be patched by its owner with an update message.
*/
package gconf
