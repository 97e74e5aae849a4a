package config

type WorkerKeyStruct struct {
	NotifyQueue   string
	ActivityQueue string
}

var WorkerKey = &WorkerKeyStruct{
	NotifyQueue:   "notify_queue",
	ActivityQueue: "activity_queue",
}
