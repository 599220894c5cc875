// Package locator builds and parses role locators:
//
//	<scheme>://<host-address>[/<action>]?<role>=<address>&...
//
// A locator names who takes part in an exchange. The host role supplies the
// authority; every other role is a query parameter, emitted in alphabetical
// order. Role names come from a closed set: unknown names are rejected when
// building and never treated as roles when parsing.
//
// Recipients flattens a RoleSet into the deduplicated address list a
// multi-party cipher encrypts against.
package locator
