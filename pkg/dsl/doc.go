/*
Package dsl provides a fluent Go builder for dialogue scenarios.

It replaces a YAML document when the scenario is generated in code or built
inside tests. The result is a memory loader accepted by guide.WithLoader.

Example usage:

	b := dsl.New("welcome", "goodbye")

	b.Step("welcome").
		Say("Would you like a coffee?").
		Help("Say order or leave.").
		On("order").To("brewing").Do("brew")

	b.Step("welcome").On("leave").To("goodbye")

	b.Step("brewing").
		Say("Anything else?").
		On("thanks").To("goodbye")

	b.Step("goodbye").Say("Bye!")

	loader := b.Build()
	sup, err := guide.New("", guide.WithLoader(loader), guide.WithActions(actions))
*/
package dsl
