package config

func (c *Config) runJobs() {
	c.scheduler.Every(10).Seconds().SingletonMode().Do(c.updateParams)
	c.scheduler.Every(1).Minute().SingletonMode().Do(c.updateAdminKeys)
	c.scheduler.Every(1).Minute().SingletonMode().Do(c.updateIPWhiteList)

	c.scheduler.StartAsync()
}

func (c *Config) updateParams() {
	params, err := c.wdb.GetParams()
	if err != nil {
		return
	}
	c.lock.Lock()
	c.params = params
	c.lock.Unlock()
}

func (c *Config) updateAdminKeys() {
	keys, err := c.wdb.GetAllAvailableAdminKeys()
	if err != nil {
		return
	}
	adminKeys := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		adminKeys[k.ApiKey] = struct{}{}
	}
	c.lock.Lock()
	c.adminKeys = adminKeys
	c.lock.Unlock()
}

func (c *Config) updateIPWhiteList() {
	ips, err := c.wdb.GetAllAvailableIpRateWhitelist()
	if err != nil {
		return
	}
	ipWhiteList := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		ipWhiteList[ip.OriginOrIP] = struct{}{}
	}
	c.lock.Lock()
	c.ipWhiteList = ipWhiteList
	c.lock.Unlock()
}
