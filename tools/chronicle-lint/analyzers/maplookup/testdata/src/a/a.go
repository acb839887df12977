package a

func bad(anchors map[string]int, id string) {
	if anchors[id] != 0 {
		process(anchors[id]) // want "map indexed twice with the same key"
	}
}

func badPointer(index map[string]*int, id string) {
	if index[id] != nil {
		use(index[id]) // want "map indexed twice with the same key"
	}
}

func good(anchors map[string]int, id string) {
	if v := anchors[id]; v != 0 {
		process(v)
	}
}

func goodCommaOk(anchors map[string]int, id string) {
	if v, ok := anchors[id]; ok {
		process(v)
	}
}

func goodDifferentKeys(anchors map[string]int, a, b string) {
	if anchors[a] != 0 {
		process(anchors[b])
	}
}

func process(v int) {}
func use(v *int)    {}
