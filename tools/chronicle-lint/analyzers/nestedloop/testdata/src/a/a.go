package a

type Event struct {
	ID string
}

func bad(events []Event) {
	for _, a := range events {
		for _, b := range events { // want "quadratic scan: inner range repeats outer range"
			if a.ID != b.ID {
				_ = a.ID + b.ID
			}
		}
	}
}

func good(events []Event, others []Event) {
	for _, a := range events {
		for _, b := range others {
			_ = a.ID + b.ID
		}
	}
}

func goodSingleLoop(events []Event) {
	for _, ev := range events {
		_ = ev.ID
	}
}
