// Package syntax provides the abstract syntax tree of ThingTalk programs as
// used by the NN (neural) surface syntax: values, filters, streams, tables,
// actions, rules and commands, full programs, permission rules, dialogue
// states, and bookkeeping control commands.
//
// Nodes know how to print themselves in the human-readable ThingTalk surface
// syntax via their ThingTalk() method, and in a compact structural form via
// String(). Two nodes are considered semantically identical if they produce
// identical String() output.
package syntax
