package config

type WorkerKeyStruct struct {
	ResultImportQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ResultImportQueue: "results:import_queue",
}
