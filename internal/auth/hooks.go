package auth

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	sl "finlet/internal/lib/logger"
)

// AfterSignUpHook runs once for every account created through SignUp. Its
// error is logged and counted, never returned to the caller of SignUp.
type AfterSignUpHook func(ctx context.Context, id Identity) error

type namedHook struct {
	name string
	fn   AfterSignUpHook
}

// OnSignUp subscribes hook to the post account creation event.
func (a *Auth) OnSignUp(name string, hook AfterSignUpHook) {
	a.hooksMu.Lock()
	defer a.hooksMu.Unlock()

	a.hooks = append(a.hooks, namedHook{name: name, fn: hook})
}

// Wait blocks until every dispatched hook has returned.
func (a *Auth) Wait() {
	a.pending.Wait()
}

// dispatchSignUp runs the hooks in order on a tracked goroutine. The context
// keeps request values but is detached from request cancellation.
func (a *Auth) dispatchSignUp(ctx context.Context, id Identity) {
	a.hooksMu.RLock()
	hooks := make([]namedHook, len(a.hooks))
	copy(hooks, a.hooks)
	a.hooksMu.RUnlock()

	if len(hooks) == 0 {
		return
	}

	log := sl.FromContext(ctx, a.log)
	hookCtx := context.WithoutCancel(ctx)

	a.pending.Add(1)
	go func() {
		defer a.pending.Done()

		ctx, cancel := context.WithTimeout(hookCtx, a.cfg.HookTimeout)
		defer cancel()

		for _, h := range hooks {
			a.runHook(ctx, log, h, id)
		}
	}()
}

func (a *Auth) runHook(ctx context.Context, log *slog.Logger, h namedHook, id Identity) {
	const op = "auth.runHook"

	log = log.With(
		slog.String("op", op),
		slog.String("hook", h.name),
		slog.String("user_id", id.User.ID),
	)

	defer func() {
		if rvr := recover(); rvr != nil {
			a.metrics.HookFailed(h.name)
			log.Error("after sign-up hook panicked",
				slog.Any("panic", rvr),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	if err := h.fn(ctx, id); err != nil {
		a.metrics.HookFailed(h.name)
		log.Error("after sign-up hook failed", sl.Err(fmt.Errorf("%s: %w", op, err)))
		return
	}

	log.Debug("after sign-up hook completed")
}
