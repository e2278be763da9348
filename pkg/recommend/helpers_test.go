package recommend

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }
