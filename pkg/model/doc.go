// Package model defines the behavioral model rendered by stateflow.
//
// A [Diagram] describes an application's runtime behavior as a set of
// [Actor] participants (UI components, stores, services, external systems),
// the [State] they own, reusable [Condition] guards, and named [Flow]
// sequences of [FlowStep] interactions started by a [FlowTrigger].
//
// # References
//
// Cross references between entities are stored as plain ids and are weak:
// deleting an actor leaves steps that name it untouched. Use an [Index] to
// resolve references; every lookup returns (value, ok) and a miss is a normal
// outcome, never an error.
//
// # Enumerations
//
// [ActorType], [StateScope], [StepType] and [TriggerType] are closed sets.
// Values read from documents are not trusted: call Valid before switching
// on them, or rely on the fallbacks consumers apply for unknown values.
package model
