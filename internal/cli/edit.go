package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stateflow/pkg/editor"
	"github.com/matzehuels/stateflow/pkg/model"
)

// edit opens an editing session on the stored diagram id, applies fn and
// saves the result. Nothing is written when fn fails.
func (c *CLI) edit(ctx context.Context, id string, fn func(s *editor.Session) error) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	s, err := editor.Open(ctx, st, id, editor.WithClock(c.now), editor.WithLogger(loggerFromContext(ctx)))
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	return s.Save(ctx)
}

// entityCommand builds the "<kind> add|rm" command group shared by every
// diagram entity.
func entityCommand(kind, short string, add, rm *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind,
		Short: short,
	}
	cmd.AddCommand(add, rm)
	return cmd
}

// =============================================================================
// Actors
// =============================================================================

func (c *CLI) actorCommand() *cobra.Command {
	var a model.Actor
	var typ, scope string

	add := &cobra.Command{
		Use:   "add <diagram> <name>",
		Short: "Add an actor column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseActorType(typ)
			if err != nil {
				return err
			}
			sc, err := model.ParseStateScope(scope)
			if err != nil {
				return err
			}
			a.Name, a.Type, a.Scope = args[1], t, sc

			return c.edit(cmd.Context(), args[0], func(s *editor.Session) error {
				added, err := s.AddActor(a)
				if err != nil {
					return err
				}
				printSuccess("Added %s %s", added.Type, StyleHighlight.Render(added.Name))
				printKeyValue("ID", added.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&a.ID, "id", "", "actor id (default: random uuid)")
	add.Flags().StringVarP(&typ, "type", "t", string(model.ActorComponent), "actor type: component, store, service, external")
	add.Flags().StringVar(&scope, "scope", "", "store scope: local, subtree, global")
	add.Flags().StringVarP(&a.Description, "description", "d", "", "description")
	add.Flags().StringVar(&a.Color, "color", "", "override color (e.g. #ff8800)")
	add.Flags().StringVar(&a.Parent, "parent", "", "id of the enclosing actor")

	rm := removeCommand("actor", func(s *editor.Session, args []string) error {
		return s.DeleteActor(args[0])
	}, c)

	return entityCommand("actor", "Add or remove actors", add, rm)
}

// =============================================================================
// States
// =============================================================================

func (c *CLI) stateCommand() *cobra.Command {
	var st model.State

	add := &cobra.Command{
		Use:   "add <diagram> <name>",
		Short: "Add a piece of state owned by an actor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st.Name = args[1]
			return c.edit(cmd.Context(), args[0], func(s *editor.Session) error {
				added, err := s.AddState(st)
				if err != nil {
					return err
				}
				printSuccess("Added state %s", StyleHighlight.Render(added.Name))
				printKeyValue("ID", added.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&st.ID, "id", "", "state id (default: random uuid)")
	add.Flags().StringVar(&st.Owner, "owner", "", "id of the owning actor")
	add.Flags().StringVar(&st.DataType, "data-type", "", "free-form data type, e.g. CartItem[]")
	add.Flags().StringVarP(&st.Description, "description", "d", "", "description")

	rm := removeCommand("state", func(s *editor.Session, args []string) error {
		return s.DeleteState(args[0])
	}, c)

	return entityCommand("state", "Add or remove states", add, rm)
}

// =============================================================================
// Conditions
// =============================================================================

func (c *CLI) conditionCommand() *cobra.Command {
	var cond model.Condition

	add := &cobra.Command{
		Use:   "add <diagram> <expression>",
		Short: "Add a reusable guard expression",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cond.Expression = args[1]
			return c.edit(cmd.Context(), args[0], func(s *editor.Session) error {
				added, err := s.AddCondition(cond)
				if err != nil {
					return err
				}
				printSuccess("Added condition %s", StyleHighlight.Render(added.Expression))
				printKeyValue("ID", added.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&cond.ID, "id", "", "condition id (default: random uuid)")
	add.Flags().StringVarP(&cond.Description, "description", "d", "", "description")

	rm := removeCommand("condition", func(s *editor.Session, args []string) error {
		return s.DeleteCondition(args[0])
	}, c)

	return entityCommand("condition", "Add or remove conditions", add, rm)
}

// =============================================================================
// Flows
// =============================================================================

func (c *CLI) flowCommand() *cobra.Command {
	var f model.Flow
	var trigger string

	add := &cobra.Command{
		Use:   "add <diagram> <name>",
		Short: "Add a flow started by a trigger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseTriggerType(trigger)
			if err != nil {
				return err
			}
			f.Name, f.Trigger.Type = args[1], t

			return c.edit(cmd.Context(), args[0], func(s *editor.Session) error {
				added, err := s.AddFlow(f)
				if err != nil {
					return err
				}
				printSuccess("Added flow %s", StyleHighlight.Render(added.Name))
				printKeyValue("ID", added.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&f.ID, "id", "", "flow id (default: random uuid)")
	add.Flags().StringVarP(&f.Description, "description", "d", "", "description")
	add.Flags().StringVar(&trigger, "trigger", string(model.TriggerUserAction), "trigger type: userAction, lifecycle, subscription, timer")
	add.Flags().StringVar(&f.Trigger.Actor, "trigger-actor", "", "id of the actor that fires the trigger")
	add.Flags().StringVar(&f.Trigger.Action, "trigger-action", "", "trigger action, e.g. onClick")
	add.Flags().StringVar(&f.Trigger.Target, "trigger-target", "", "trigger target, e.g. a button name")

	rm := removeCommand("flow", func(s *editor.Session, args []string) error {
		return s.DeleteFlow(args[0])
	}, c)

	return entityCommand("flow", "Add or remove flows", add, rm)
}

// =============================================================================
// Steps
// =============================================================================

func (c *CLI) stepCommand() *cobra.Command {
	var st model.FlowStep
	var typ string

	add := &cobra.Command{
		Use:   "add <diagram> <flow>",
		Short: "Append a step to a flow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseStepType(typ)
			if err != nil {
				return err
			}
			st.Type = t

			return c.edit(cmd.Context(), args[0], func(s *editor.Session) error {
				added, err := s.AddStep(args[1], st)
				if err != nil {
					return err
				}
				printSuccess("Added %s step %s → %s", added.Type, orDash(added.From), orDash(added.To))
				printKeyValue("ID", added.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&st.ID, "id", "", "step id (default: random uuid)")
	add.Flags().StringVarP(&typ, "type", "t", string(model.StepDispatch), "step type: dispatch, stateChange, subscribe, effect, render")
	add.Flags().StringVar(&st.From, "from", "", "source actor id")
	add.Flags().StringVar(&st.To, "to", "", "target actor id")
	add.Flags().StringVar(&st.Action, "action", "", "action name")
	add.Flags().StringVar(&st.State, "state", "", "id of the state involved")
	add.Flags().StringVar(&st.Payload, "payload", "", "payload description")
	add.Flags().StringVar(&st.Condition, "condition", "", "id of the guarding condition")
	add.Flags().BoolVar(&st.IsAsync, "async", false, "mark the step asynchronous")
	add.Flags().StringVarP(&st.Description, "description", "d", "", "description")

	rm := &cobra.Command{
		Use:   "rm <diagram> <flow> <step>",
		Short: "Remove a step from a flow",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), args[0], func(s *editor.Session) error {
				if err := s.DeleteStep(args[1], args[2]); err != nil {
					return err
				}
				printSuccess("Removed step %s", args[2])
				return nil
			})
		},
	}

	return entityCommand("step", "Add or remove flow steps", add, rm)
}

// removeCommand builds "<kind> rm <diagram> <id>". References to the
// removed entity are left in place; `stateflow check` reports them.
func removeCommand(kind string, del func(s *editor.Session, args []string) error, c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <diagram> <id>",
		Short: "Remove a " + kind,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), args[0], func(s *editor.Session) error {
				if err := del(s, args[1:]); err != nil {
					return err
				}
				printSuccess("Removed %s %s", kind, args[1])
				return nil
			})
		},
	}
}

// renameCommand creates the "rename" command.
func (c *CLI) renameCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "rename <diagram> <name>",
		Short: "Rename a diagram and optionally replace its description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), args[0], func(s *editor.Session) error {
				desc := s.Diagram().Description
				if cmd.Flags().Changed("description") {
					desc = description
				}
				if err := s.Rename(args[1], desc); err != nil {
					return err
				}
				printSuccess("Renamed to %s", StyleHighlight.Render(args[1]))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "new description (markdown)")

	return cmd
}
