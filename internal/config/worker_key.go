package config

type WorkerKeyStruct struct {
	PersistSolveAnswersQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistSolveAnswersQueue: "persist_solve_answers_queue",
}
