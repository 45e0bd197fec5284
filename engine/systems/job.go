package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/offaxis/engine/core"
)

type JobType int

const (
	JOB_TYPE_GENERAL JobType = iota
	// Jobs writing files, such as preview images.
	JOB_TYPE_FILE_IO
)

/**
 * @brief Describes a job to be run by the job system. OnStart runs on a
 * worker and may publish a result on the provided channel, which is then
 * handed to OnComplete or OnFailure.
 */
type JobTask struct {
	JobType     JobType
	InputParams interface{}
	OnStart     func(params interface{}, out chan<- interface{}) error
	OnComplete  func(out <-chan interface{})
	OnFailure   func(out <-chan interface{})
	// Called last, whatever the outcome.
	OnCompletionCallback func()
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	pending    sync.WaitGroup
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	jq := make(chan JobTask, channelSize)
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   jq,
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	defer js.pending.Done()

	paramsChan := make(chan interface{}, 1)
	// Run the job and handle potential errors
	err := job.OnStart(job.InputParams, paramsChan)
	close(paramsChan)
	if err != nil {
		core.LogError(err.Error())
		if job.OnFailure != nil {
			job.OnFailure(paramsChan)
		}
	} else if job.OnComplete != nil {
		job.OnComplete(paramsChan)
	}

	// Call the completion callback if set
	if job.OnCompletionCallback != nil {
		job.OnCompletionCallback()
	}
}

/**
 * @brief Shuts the job system down once every queued job has run.
 */
func (js *JobSystem) Shutdown() error {
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}

/**
 * @brief Blocks until every submitted job has run.
 */
func (js *JobSystem) Wait() {
	js.pending.Wait()
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) {
	js.pending.Add(1)
	js.jobQueue <- jt
}
