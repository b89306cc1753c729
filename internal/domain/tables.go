package domain

var Tables = []interface{}{
	// System
	&SysUser{},
	&SysSession{},
	// Shop
	&Product{},
	&ContactMessage{},
}
