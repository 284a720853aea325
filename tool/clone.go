package tool

func cloneRegistrations(in []ToolRegistration) []ToolRegistration {
	out := make([]ToolRegistration, len(in))
	for i := range in {
		out[i] = cloneRegistration(in[i])
	}
	return out
}

func cloneRegistration(in ToolRegistration) ToolRegistration {
	out := in
	out.Manifest = cloneManifest(in.Manifest)
	out.Config = cloneStringMap(in.Config)
	return out
}

func cloneManifest(in Manifest) Manifest {
	out := in
	if in.Actions != nil {
		out.Actions = make(map[string]ActionSpec, len(in.Actions))
		for name, action := range in.Actions {
			out.Actions[name] = cloneActionSpec(action)
		}
	}
	out.Config = cloneFieldMap(in.Config)
	if in.Health != nil {
		health := *in.Health
		out.Health = &health
	}
	if in.Tool.Tags != nil {
		out.Tool.Tags = append([]string(nil), in.Tool.Tags...)
	}
	if in.Transport.Retry.RetryableCodes != nil {
		out.Transport.Retry.RetryableCodes = append([]int(nil), in.Transport.Retry.RetryableCodes...)
	}
	return out
}

func cloneActionSpec(in ActionSpec) ActionSpec {
	out := in
	out.Inputs = cloneFieldMap(in.Inputs)
	out.Outputs = cloneFieldMap(in.Outputs)
	return out
}

func cloneFieldMap(in map[string]FieldSpec) map[string]FieldSpec {
	if in == nil {
		return nil
	}
	out := make(map[string]FieldSpec, len(in))
	for name, spec := range in {
		out[name] = cloneFieldSpec(spec)
	}
	return out
}

func cloneFieldSpec(in FieldSpec) FieldSpec {
	out := in
	if in.Items != nil {
		items := cloneFieldSpec(*in.Items)
		out.Items = &items
	}
	out.Properties = cloneFieldMap(in.Properties)
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
