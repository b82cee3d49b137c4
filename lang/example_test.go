package lang_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ardnew/pyexpr/lang"
)

func ExampleEvaluateExpr() {
	v, err := lang.EvaluateExpr(
		context.Background(),
		"[('state', 'in', ['draft', 'sent']), ('amount', '>', limit)]",
		lang.Env{"limit": lang.NewInt(100)},
		nil,
	)
	if err != nil {
		fmt.Println(err)

		return
	}

	fmt.Println(v)
	// Output: [('state', 'in', ['draft', 'sent']), ('amount', '>', 100)]
}

func ExampleEvaluateExpr_builtins() {
	builtins := lang.NewRegistry(map[string]lang.Value{
		"upper": lang.NewCallable("upper",
			func(_ context.Context, args []lang.Value, _ *lang.Dict) (lang.Value, error) {
				return lang.NewString(strings.ToUpper(args[0].Display())), nil
			},
		),
	})

	v, _ := lang.EvaluateExpr(context.Background(),
		"{'name': upper(partner), 'active': True}",
		lang.Env{"partner": lang.NewString("acme")},
		builtins,
	)

	out, _ := v.MarshalJSON()
	fmt.Println(string(out))
	// Output: {"name":"ACME","active":true}
}

func ExampleEvaluateExpr_forbiddenCall() {
	_, err := lang.EvaluateExpr(context.Background(), "os_system('rm')", nil, nil)

	fmt.Println(errors.Is(err, lang.ErrForbiddenCall), lang.ClassName(err))
	// Output: true ForbiddenCallError
}

func ExampleEvaluateBool() {
	env := lang.Env{"state": lang.NewString("done")}

	fmt.Println(lang.EvaluateBool(context.Background(), "state == 'done'", env, nil, false))
	fmt.Println(lang.EvaluateBool(context.Background(), "state ==", env, nil, true))
	// Output:
	// true
	// true
}

func ExampleFormat() {
	node, _ := lang.ParseString(context.Background(), "(a+b)*c if not(x) else[1,2]")

	fmt.Println(lang.Format(node))
	// Output: (a + b) * c if not x else [1, 2]
}
