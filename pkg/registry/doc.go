/*
Package registry holds the capability modules registered at startup and
routes calls into them.

The Registry answers discovery questions (what is registered, what is
currently available, which permissions are missing) and renders the available
surface into prompt-ready schema text. The Router resolves a call id,
verifies permissions and availability, validates parameters against the
operation's declared specs, and dispatches under a bounded timeout.
*/
package registry
