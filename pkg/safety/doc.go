/*
Package safety decides whether a candidate device action may execute
immediately or must wait for explicit confirmation.

Two layers feed the decision. The firewall is synchronous and deterministic:
keyword and pattern matching over the action, never touching the inference
service. The semantic classifier is asynchronous and probabilistic: a
grammar-constrained model call that may return an opinion or nothing at all.

The combined verdict is the UNION of the two layers: an action requires
confirmation if either layer flags it. The system fails toward caution:
a classifier failure is "no opinion", never "safe".
*/
package safety
