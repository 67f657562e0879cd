// Package chimera holds the data model of a Chimera Protocol session: map
// graphs, characters and their templates, items, quests and the session
// state itself. Types here carry no behavior beyond lookup, validation and
// copying; all mutation is owned by the session orchestrator.
package chimera
