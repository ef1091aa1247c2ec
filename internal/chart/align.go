package chart

import "sort"

// Series is one device's readings as (label, value) pairs in file order.
type Series struct {
	Device string
	Labels []string
	Values []float64
}

// Add appends a reading.
func (s *Series) Add(label string, value float64) {
	s.Labels = append(s.Labels, label)
	s.Values = append(s.Values, value)
}

// Dataset is a device's values positioned against the chart's label axis.
// A nil entry marks a label the device has no reading for.
type Dataset struct {
	Device string     `json:"device"`
	Data   []*float64 `json:"data"`
}

// Chart is a set of datasets sharing one sorted label axis.
type Chart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Align merges every series onto the sorted union of their labels. Datasets
// keep the order of the input series. If a device repeats a label the last
// value wins.
func Align(series []Series) Chart {
	index := make(map[string]int)
	for _, s := range series {
		for _, l := range s.Labels {
			index[l] = 0
		}
	}

	labels := make([]string, 0, len(index))
	for l := range index {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for i, l := range labels {
		index[l] = i
	}

	datasets := make([]Dataset, 0, len(series))
	for _, s := range series {
		data := make([]*float64, len(labels))
		for i, l := range s.Labels {
			v := s.Values[i]
			data[index[l]] = &v
		}
		datasets = append(datasets, Dataset{Device: s.Device, Data: data})
	}

	return Chart{Labels: labels, Datasets: datasets}
}
