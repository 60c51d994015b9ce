/*
Package nodes provides the concrete decision nodes wired into the
orchestration graph.

The pipeline is a linear chain (intent, plan, tool_select, params, execute,
ui_action, respond) with a single cycle from respond back to tool_select
that only multi-step plans take. Each node self-gates: when its precondition
does not hold (no capability selected, an action already handled) it passes
the state through untouched, preserving the single-successor edge contract.

Node-local faults never abort a turn. A failed model call or an unparseable
reply degrades to a domain value (UNKNOWN intent, empty parameters) recorded
in the state's LastFault field; only structural graph faults and explicit
capability errors populate the fatal error field.
*/
package nodes
