/*
Package session implements session management and persistence orchestration.

It provides high-level abstractions for handling concurrent access to turn
states across multiple replicas, integrating local memory locks with an
optional distributed locker and a long-term storage adapter.
*/
package session
