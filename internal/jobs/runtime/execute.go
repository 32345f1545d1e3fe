package runtime

import (
	"fmt"

	domainjobs "github.com/yungbote/games-aggregator/internal/domain/jobs"
)

type MissingHandlerError struct{ JobType string }

func (e *MissingHandlerError) Error() string {
	return "no handler registered for job_type=" + e.JobType
}

type PanicError struct{ Val any }

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }

// Execute runs jc through its registered handler and leaves the job row terminal for this
// attempt. The returned error is the one recorded on the row, nil on success.
func Execute(reg *Registry, jc *Context) (err error) {
	if jc == nil || jc.Job == nil {
		return fmt.Errorf("job context missing")
	}
	h, ok := reg.Get(jc.Job.JobType)
	if !ok {
		err = &MissingHandlerError{JobType: jc.Job.JobType}
		jc.Fail("dispatch", err)
		return err
	}

	jc.Started()
	defer func() {
		if r := recover(); r != nil {
			jc.Log.Error("job handler panic", "panic", r)
			err = &PanicError{Val: r}
			jc.Fail("panic", err)
		}
	}()

	if err = h.Run(jc); err != nil {
		jc.Fail("run", err)
		return err
	}
	// Handlers normally call Succeed themselves.
	if jc.Job.Status == domainjobs.StatusRunning {
		jc.Succeed(nil)
	}
	return nil
}
